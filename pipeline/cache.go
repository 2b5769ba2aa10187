package pipeline

import (
	"os"
	"path/filepath"
)

// cacheMarker is the file cmake writes on successful configuration.
const cacheMarker = "CMakeCache.txt"

// configInputs are the documents whose modification invalidates an
// existing configuration. Missing files are simply not compared.
var configInputs = []string{
	"CMakeLists.txt",
	"CMakePresets.json",
	"CMakeUserPresets.json",
	"vcpkg.json",
}

// CacheStale reports whether the build directory needs reconfiguring,
// and on staleness caused by a modified input, which file changed.
//
// A missing build directory or cache marker is always stale. Otherwise
// the cache is stale when any existing configuration input is newer
// than the marker.
func CacheStale(buildDir, rootDir string) (bool, string) {
	markerInfo, err := os.Stat(filepath.Join(buildDir, cacheMarker))
	if err != nil {
		return true, ""
	}
	cacheMtime := markerInfo.ModTime()

	for _, name := range configInputs {
		info, err := os.Stat(filepath.Join(rootDir, name))
		if err != nil {
			continue
		}
		if info.ModTime().After(cacheMtime) {
			return true, name
		}
	}
	return false, ""
}
