//go:build linux

package resource

import "golang.org/x/sys/unix"

// AvailableMemory returns the free plus buffered memory reported by the
// kernel, in bytes.
func AvailableMemory() (uint64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * unit, true
}
