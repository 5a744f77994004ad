package window

import (
	"fmt"
	"math"
	"sort"
)

// SizeCache tracks per-item sizes for lists whose items are not all the same
// size. Unmeasured items count as the estimate. Corrections are kept in a
// Fenwick tree, so Set and Offset are O(log n) and IndexAt is O(log² n).
//
// The zero value is an empty cache with a zero estimate; construct with
// NewSizeCache.
type SizeCache struct {
	estimate float64
	sizes    []float64 // measured size, 0 when unmeasured
	tree     []float64 // 1-based Fenwick tree of (size - estimate)
}

// NewSizeCache returns a cache for n items, each initially estimated at
// estimate.
func NewSizeCache(n int, estimate float64) (*SizeCache, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidItemCount, n)
	}
	if !(estimate > 0) || math.IsInf(estimate, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidItemSize, estimate)
	}
	c := &SizeCache{estimate: estimate}
	c.Reset(n)
	return c, nil
}

// Reset drops every measurement and resizes the cache to n items.
func (c *SizeCache) Reset(n int) {
	if n < 0 {
		n = 0
	}
	c.sizes = make([]float64, n)
	c.tree = make([]float64, n+1)
}

// Len returns the number of items tracked.
func (c *SizeCache) Len() int { return len(c.sizes) }

// Estimate returns the size assumed for unmeasured items.
func (c *SizeCache) Estimate() float64 { return c.estimate }

// Measured reports whether item i has a recorded size.
func (c *SizeCache) Measured(i int) bool {
	return i >= 0 && i < len(c.sizes) && c.sizes[i] > 0
}

// Size returns the measured size of item i, or the estimate.
func (c *SizeCache) Size(i int) float64 {
	if c.Measured(i) {
		return c.sizes[i]
	}
	return c.estimate
}

// Set records the real size of item i and corrects every later offset.
func (c *SizeCache) Set(i int, size float64) error {
	if i < 0 || i >= len(c.sizes) {
		return fmt.Errorf("window: size cache index %d out of range [0,%d)", i, len(c.sizes))
	}
	if !(size > 0) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: item %d got %g", ErrInvalidItemSize, i, size)
	}
	delta := size - c.Size(i)
	c.sizes[i] = size
	if delta != 0 {
		c.add(i, delta)
	}
	return nil
}

// Offset returns the top of item i, which equals the sum of the sizes of all
// items before it. Offset(Len()) is the total size.
func (c *SizeCache) Offset(i int) float64 {
	if i <= 0 {
		return 0
	}
	if i > len(c.sizes) {
		i = len(c.sizes)
	}
	return float64(i)*c.estimate + c.prefix(i)
}

// Total returns the full scrollable size.
func (c *SizeCache) Total() float64 { return c.Offset(len(c.sizes)) }

// IndexAt returns the item containing offset. Offsets before the content map
// to 0 and offsets past it map to the last item. It returns -1 for an empty
// cache.
func (c *SizeCache) IndexAt(offset float64) int {
	n := len(c.sizes)
	if n == 0 {
		return -1
	}
	// first item whose bottom lies past offset
	i := sort.Search(n, func(i int) bool { return c.Offset(i+1) > offset })
	if i >= n {
		return n - 1
	}
	return i
}

func (c *SizeCache) add(i int, delta float64) {
	for j := i + 1; j < len(c.tree); j += j & -j {
		c.tree[j] += delta
	}
}

// prefix sums the corrections of items [0, i).
func (c *SizeCache) prefix(i int) float64 {
	var s float64
	for j := i; j > 0; j -= j & -j {
		s += c.tree[j]
	}
	return s
}

// ComputeMeasuredRange is ComputeVisibleRange over real item sizes. The range
// covers every item that intersects [ScrollOffset, ScrollOffset+ContainerHeight)
// plus overscan items on each side, and TotalHeight is c.Total().
func ComputeMeasuredRange(c *SizeCache, vp Viewport, overscan int) (VisibleRange, error) {
	if overscan < 0 {
		return VisibleRange{}, fmt.Errorf("%w: got %d", ErrInvalidOverscan, overscan)
	}
	if err := validateViewport(vp); err != nil {
		return VisibleRange{}, err
	}

	n := c.Len()
	total := c.Total()
	if n == 0 {
		return emptyRange(total), nil
	}

	top := max(0, vp.ScrollOffset)
	first := c.IndexAt(top)
	last := first
	if vp.ContainerHeight > 0 {
		bottom := top + vp.ContainerHeight
		last = c.IndexAt(bottom)
		if last > first && c.Offset(last) >= bottom {
			last--
		}
	}

	overscan = min(overscan, n)
	start := max(0, first-overscan)
	end := addCapped(last, overscan, n-1)

	offsets := make([]ItemOffset, 0, end-start+1)
	pos := c.Offset(start)
	for i := start; i <= end; i++ {
		h := c.Size(i)
		offsets = append(offsets, ItemOffset{Index: i, Top: pos, Height: h})
		pos += h
	}

	return VisibleRange{
		StartIndex:  start,
		EndIndex:    end,
		Offsets:     offsets,
		TotalHeight: total,
	}, nil
}
