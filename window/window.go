// Package window computes which items of a large list fall inside a
// scrollable viewport, so callers render only that subset.
//
// Sizes and offsets are unitless: pixels for a graphical host, terminal rows
// for the TUI in this module. Every item is assumed to occupy the same
// estimated size; SizeCache and ComputeMeasuredRange cover lists whose real
// item sizes vary.
//
// Usage:
//
//	r, err := window.ComputeVisibleRange(len(items), 1, vp, 5)
//	for _, off := range r.Offsets {
//	    row := off.Top - vp.ScrollOffset
//	    // draw items[off.Index] at row
//	}
package window

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors returned for caller bugs. Inputs are never clamped to hide
// them.
var (
	ErrInvalidItemCount = errors.New("window: item count must be >= 0")
	ErrInvalidItemSize  = errors.New("window: item size must be finite and > 0")
	ErrInvalidOverscan  = errors.New("window: overscan must be >= 0")
	ErrInvalidViewport  = errors.New("window: viewport must be finite with container height >= 0")
)

// Viewport is the scroll position and visible extent of the list container.
type Viewport struct {
	ScrollOffset    float64
	ContainerHeight float64
}

// ItemOffset places one item inside the full scrollable content.
type ItemOffset struct {
	Index  int
	Top    float64
	Height float64
}

// Bottom returns the offset just past the item's last row.
func (o ItemOffset) Bottom() float64 { return o.Top + o.Height }

// VisibleRange is the inclusive [StartIndex, EndIndex] window of items to
// render. An empty range has EndIndex == -1 and no offsets.
type VisibleRange struct {
	StartIndex  int
	EndIndex    int
	Offsets     []ItemOffset
	TotalHeight float64
}

func emptyRange(total float64) VisibleRange {
	return VisibleRange{StartIndex: 0, EndIndex: -1, TotalHeight: total}
}

// Empty reports whether no item is in the range.
func (r VisibleRange) Empty() bool { return r.EndIndex < r.StartIndex }

// Len returns the number of items in the range.
func (r VisibleRange) Len() int {
	if r.Empty() {
		return 0
	}
	return r.EndIndex - r.StartIndex + 1
}

// Contains reports whether index i is inside the range.
func (r VisibleRange) Contains(i int) bool {
	return !r.Empty() && i >= r.StartIndex && i <= r.EndIndex
}

// SameWindow is the shallow identity check used to decide whether a re-render
// is needed: two ranges are the same window when their bounds match.
func (r VisibleRange) SameWindow(o VisibleRange) bool {
	return r.StartIndex == o.StartIndex && r.EndIndex == o.EndIndex
}

// String implements fmt.Stringer.
func (r VisibleRange) String() string {
	if r.Empty() {
		return fmt.Sprintf("[] total=%g", r.TotalHeight)
	}
	return fmt.Sprintf("[%d..%d] total=%g", r.StartIndex, r.EndIndex, r.TotalHeight)
}

// ComputeVisibleRange returns the items that intersect the viewport, widened by
// overscan items on each side, with their offsets at index*estimatedItemSize.
//
// TotalHeight is always itemCount*estimatedItemSize, independent of how many
// items end up in the range. A negative scroll offset behaves like zero. An
// offset past the end of the content still yields the last item so that
// StartIndex <= EndIndex holds for every non-empty list.
func ComputeVisibleRange(itemCount int, estimatedItemSize float64, vp Viewport, overscan int) (VisibleRange, error) {
	if err := validate(itemCount, estimatedItemSize, vp, overscan); err != nil {
		return VisibleRange{}, err
	}

	total := float64(itemCount) * estimatedItemSize
	if itemCount == 0 {
		return emptyRange(total), nil
	}

	// Clamp in float space; int conversion of an out-of-range float is
	// implementation defined.
	n := float64(itemCount)
	first := int(math.Min(math.Max(math.Floor(vp.ScrollOffset/estimatedItemSize), 0), n))
	visible := int(math.Min(math.Ceil(vp.ContainerHeight/estimatedItemSize), n))
	overscan = min(overscan, itemCount)

	start := max(0, first-overscan)
	start = min(start, itemCount-1)

	last := itemCount - 1
	end := addCapped(start, visible, last)
	end = addCapped(end, overscan, last)
	end = addCapped(end, overscan, last)

	offsets := make([]ItemOffset, 0, end-start+1)
	for i := start; i <= end; i++ {
		offsets = append(offsets, ItemOffset{
			Index:  i,
			Top:    float64(i) * estimatedItemSize,
			Height: estimatedItemSize,
		})
	}

	return VisibleRange{
		StartIndex:  start,
		EndIndex:    end,
		Offsets:     offsets,
		TotalHeight: total,
	}, nil
}

// addCapped returns min(a+b, limit) for non-negative b without overflowing.
func addCapped(a, b, limit int) int {
	if b > limit-a {
		return limit
	}
	return a + b
}

func validate(itemCount int, size float64, vp Viewport, overscan int) error {
	if itemCount < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidItemCount, itemCount)
	}
	if !(size > 0) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidItemSize, size)
	}
	if overscan < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOverscan, overscan)
	}
	return validateViewport(vp)
}

func validateViewport(vp Viewport) error {
	if math.IsNaN(vp.ScrollOffset) || math.IsInf(vp.ScrollOffset, 0) {
		return fmt.Errorf("%w: scroll offset %g", ErrInvalidViewport, vp.ScrollOffset)
	}
	if !(vp.ContainerHeight >= 0) || math.IsInf(vp.ContainerHeight, 0) {
		return fmt.Errorf("%w: container height %g", ErrInvalidViewport, vp.ContainerHeight)
	}
	return nil
}
