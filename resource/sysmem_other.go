//go:build !linux

package resource

// AvailableMemory is not implemented on this platform.
func AvailableMemory() (uint64, bool) {
	return 0, false
}
