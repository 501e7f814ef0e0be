package compositor

// The child keeps decoded video frames in an internal cache. Each cached
// frame is assumed to cost about 6 MiB; the cache capacity is derived from
// free physical memory and clamped into a fixed range. The lower bound is
// honored even when it implies swapping; the upper bound caps the absolute
// memory commitment.
const (
	bytesPerCachedFrame = 6 * 1024 * 1024
	minFrameCacheItems  = 500
	maxFrameCacheItems  = 2000
)

// MaxFrameCacheItems returns the frame-cache capacity to configure the child
// with, based on the host's free physical memory (total physical memory on
// darwin, see sizing_darwin.go).
func MaxFrameCacheItems() int {
	return frameCacheItemsFor(freeMemoryBytes())
}

func frameCacheItemsFor(freeBytes uint64) int {
	items := int(freeBytes / bytesPerCachedFrame)
	if items < minFrameCacheItems {
		return minFrameCacheItems
	}
	if items > maxFrameCacheItems {
		return maxFrameCacheItems
	}
	return items
}
