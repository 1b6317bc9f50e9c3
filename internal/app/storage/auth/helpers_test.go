package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePassword(t *testing.T, dir, password string) string {
	t.Helper()
	path := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(path, []byte(password+"\n"), 0o600))
	return path
}
