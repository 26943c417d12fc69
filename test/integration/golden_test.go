package integration

import (
	"os"
	"path/filepath"
)

// readGolden loads a capture file from testdata. Captures are recorded
// against the game itself and are not part of the repository; tests that
// depend on one skip when it is absent.
func readGolden(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("testdata", name))
}
