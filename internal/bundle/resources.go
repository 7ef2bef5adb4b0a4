package bundle

import (
	"os"
	"path/filepath"
)

// ResourcesDir returns the directory the launcher's bundled resources live
// in. Inside a macOS application (X.app/Contents/MacOS/<binary>) that is
// X.app/Contents/Resources; for a bare binary it is the binary's directory.
func ResourcesDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return resourcesDirFor(exe), nil
}

func resourcesDirFor(executable string) string {
	dir := filepath.Dir(executable)
	if filepath.Base(dir) == "MacOS" && filepath.Base(filepath.Dir(dir)) == "Contents" {
		return filepath.Join(filepath.Dir(dir), "Resources")
	}
	return dir
}
