package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInfo(t *testing.T) {
	t.Parallel()

	vcs := func() (string, string) { return "0123456789abcdef", "2024-05-01T10:00:00Z" }
	noVCS := func() (string, string) { return "", "" }

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		vcs       func() (string, string)
		want      VersionInfo
	}{
		{
			name:      "release build",
			version:   "v1.4.0",
			commit:    "abc",
			buildDate: "2024-06-01T00:00:00Z",
			vcs:       vcs,
			want:      VersionInfo{Version: "v1.4.0", Commit: "abc", BuildDate: "2024-06-01 00:00:00 UTC"},
		},
		{
			name:      "dev build reads vcs info",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       vcs,
			want:      VersionInfo{Version: "build-01234567", Commit: "0123456789abcdef", BuildDate: "2024-05-01 10:00:00 UTC"},
		},
		{
			name:      "dev build without vcs info",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       noVCS,
			want:      VersionInfo{Version: "build-unknown", Commit: unknownStr, BuildDate: unknownStr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildInfo(tt.version, tt.commit, tt.buildDate, tt.vcs)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSatisfies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		version    string
		constraint string
		want       bool
		wantErr    bool
	}{
		{name: "within range", version: "1.4.0", constraint: ">= 1.2, < 2", want: true},
		{name: "v prefix", version: "v1.4.0", constraint: "~1.4", want: true},
		{name: "too old", version: "1.1.9", constraint: ">= 1.2", want: false},
		{name: "development build", version: "build-01234567", constraint: ">= 9", want: true},
		{name: "invalid constraint", version: "1.0.0", constraint: "not a constraint", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Satisfies(tt.version, tt.constraint)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.version != "build-01234567", IsRelease(tt.version))
		})
	}
}
