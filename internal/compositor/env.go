package compositor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// readOnlyFSEnv signals that the host filesystem cannot be written; when set,
// the executable's permission bits are taken as-is.
const readOnlyFSEnv = "READ_ONLY_FS"

// compositorBinaryName is the well-known name of the helper inside a
// binaries directory.
func compositorBinaryName() string {
	if runtime.GOOS == "windows" {
		return "compositor.exe"
	}
	return "compositor"
}

// resolveExecutable picks the child binary: an explicit path wins, otherwise
// the well-known name inside the binaries directory.
func resolveExecutable(explicitPath, binariesDirectory string) (string, error) {
	path := explicitPath
	if path == "" {
		if binariesDirectory == "" {
			return "", fmt.Errorf("no compositor binary configured")
		}
		path = filepath.Join(binariesDirectory, compositorBinaryName())
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("compositor binary: %w", err)
	}
	return path, nil
}

// ensureExecutable sets mode 0755 on the child binary so the spawn cannot
// fail on an unpacked-without-permissions install.
func ensureExecutable(path string) error {
	if os.Getenv(readOnlyFSEnv) != "" {
		return nil
	}
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("chmod compositor binary: %w", err)
	}
	return nil
}

// libraryPathAdditions returns the environment entries that let the dynamic
// linker find the shared libraries shipped next to the child binary.
func libraryPathAdditions(executablePath string) []string {
	dir := filepath.Dir(executablePath)

	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "DYLD_LIBRARY_PATH"
	case "windows":
		name = "PATH"
	default:
		name = "LD_LIBRARY_PATH"
	}

	value := dir
	if existing := os.Getenv(name); existing != "" {
		value = dir + string(os.PathListSeparator) + existing
	}
	return []string{name + "=" + value}
}
