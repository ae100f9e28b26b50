package filemap

import (
	"os"
	"path/filepath"
	"testing"
)

// writeBytesToTempFile writes data to a fresh file under t.TempDir() and
// returns its path, for tests that want to exercise Open directly against
// a hand-built byte image rather than going through Write.
func writeBytesToTempFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "map.db")

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
