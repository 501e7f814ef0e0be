package compositor

import "testing"

func TestFrameCacheItemsFor(t *testing.T) {
	const gib = 1024 * 1024 * 1024

	tests := []struct {
		name string
		free uint64
		want int
	}{
		{"1 GiB clamps up to the floor", 1 * gib, 500},
		{"100 GiB clamps down to the ceiling", 100 * gib, 2000},
		{"6 GiB lands in range", 6 * gib, 1024},
		{"zero free memory still serves the floor", 0, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frameCacheItemsFor(tt.free); got != tt.want {
				t.Errorf("frameCacheItemsFor(%d) = %d, want %d", tt.free, got, tt.want)
			}
		})
	}
}

func TestMaxFrameCacheItems_InBounds(t *testing.T) {
	got := MaxFrameCacheItems()
	if got < minFrameCacheItems || got > maxFrameCacheItems {
		t.Errorf("MaxFrameCacheItems() = %d, outside [%d, %d]", got, minFrameCacheItems, maxFrameCacheItems)
	}
}
