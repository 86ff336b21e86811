// Package page defines the page abstraction shared by the storage layer and
// the buffer pool: the Page interface, the DbFile interface over paged
// files, and the process-wide page size.
package page

import "sync/atomic"

// DefaultPageSize is the page size in bytes unless overridden for tests.
const DefaultPageSize = 4096

var pageSize atomic.Int64

func init() {
	pageSize.Store(DefaultPageSize)
}

// Size returns the process-wide page size in bytes. Every page store and
// every cached page uses this value.
func Size() int {
	return int(pageSize.Load())
}

// SetSizeForTest overrides the process-wide page size. Tests only.
func SetSizeForTest(size int) {
	pageSize.Store(int64(size))
}

// ResetSize restores the default page size. Tests only.
func ResetSize() {
	pageSize.Store(DefaultPageSize)
}
