//go:build windows

package v23

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// LoadLibrary opens the ONNX Runtime DLL and returns its handle.
// An empty path searches "onnxruntime.dll" on the system search path.
func LoadLibrary(path string) (uintptr, error) {
	if path == "" {
		path = "onnxruntime.dll"
	}
	handle, err := windows.LoadLibraryEx(path, 0, windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS|windows.LOAD_LIBRARY_SEARCH_USER_DIRS)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return uintptr(handle), nil
}
