//go:build darwin || linux || freebsd

package v23

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// defaultLibraryNames are tried in order when no explicit path is given.
func defaultLibraryNames() []string {
	return []string{
		"libonnxruntime.so",
		"libonnxruntime.so.1",
		"libonnxruntime.dylib",
		"onnxruntime.framework/onnxruntime",
	}
}

// LoadLibrary opens the ONNX Runtime shared library and returns its handle.
// An empty path searches the default library names on the system loader path.
func LoadLibrary(path string) (uintptr, error) {
	if path != "" {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return handle, nil
	}

	var lastErr error
	for _, name := range defaultLibraryNames() {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("failed to locate ONNX Runtime library: %w", lastErr)
}
