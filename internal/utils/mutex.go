package utils

import "sync"

var gdalMu sync.Mutex

// ExecuteWithGDALLock serializes access to GDAL, which is not safe for
// concurrent use from multiple goroutines on the same dataset handles.
func ExecuteWithGDALLock(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
