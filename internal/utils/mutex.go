package utils

import "sync"

var mu sync.Mutex

// ExecuteWithMutex serializes GDAL calls that run from concurrent pipeline
// goroutines.
func ExecuteWithMutex(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
