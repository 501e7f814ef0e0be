package compositor

import "golang.org/x/sys/unix"

// freeMemoryBytes approximates free physical memory. Darwin does not expose
// a cheap free-page count without mach calls, so total memory is used
// instead. With 12 GiB or more the result is clamped to 2000 frames either
// way; below that the cache is sized from total, not free, memory.
func freeMemoryBytes() uint64 {
	size, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0
	}
	return size
}
