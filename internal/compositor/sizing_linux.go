package compositor

import "golang.org/x/sys/unix"

// freeMemoryBytes reads free physical memory from the kernel. A failed read
// reports zero, which the clamp turns into the minimum cache size.
func freeMemoryBytes() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}
