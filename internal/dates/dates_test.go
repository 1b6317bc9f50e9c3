package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "date with time", input: "2024-03-01 09:15", want: "2024-03-01-0915"},
		{name: "date only", input: "2024-03-01", want: "2024-03-01"},
		{name: "date with seconds", input: "2024-01-02 13:45:10", want: "2024-01-02-134510"},
		{name: "every space replaced", input: "2024-01-02 13:45 UTC", want: "2024-01-02-1345-UTC"},
		{name: "empty", input: "", want: ""},
		{name: "short value", input: "2024", want: "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-02 13:45", Display("2024-01-02-1345"))
	assert.Equal(t, "2024-01-02", Display("2024-01-02"))
	assert.Equal(t, "garbage", Display("garbage"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse("2024-01-02-1345")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 13, 45, 0, 0, time.UTC), got)

	got, err = Parse("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = Parse("")
	require.Error(t, err)

	_, err = Parse("2024-13-40")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 7, 8, 9, 0, 0, time.UTC)
	token := Token(now)
	assert.Equal(t, "2025-06-07-0809", token)
	assert.True(t, HasTime(token))
	assert.Equal(t, "2025-06-07 08:09", Display(token))
}
