package utils

import (
	"runtime"
)

const (
	MaxBufferSize = 64 * 1024 // Buffers above this are not pooled
	MaxImageWidth = 1200      // Static images wider than this are downscaled

	DefaultWorkerCountMax = 12
)

// GetDefaultWorkerCount returns the default worker count based on CPU cores
func GetDefaultWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		return 2
	}
	if workers > DefaultWorkerCountMax {
		return DefaultWorkerCountMax
	}
	return workers
}
