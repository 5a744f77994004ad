package window

// MaxScroll returns the largest scroll offset that still fills the container.
func MaxScroll(totalHeight, containerHeight float64) float64 {
	m := totalHeight - containerHeight
	if m < 0 {
		return 0
	}
	return m
}

// ClampScroll bounds offset to [0, MaxScroll(totalHeight, containerHeight)].
func ClampScroll(offset, totalHeight, containerHeight float64) float64 {
	if offset < 0 {
		return 0
	}
	if m := MaxScroll(totalHeight, containerHeight); offset > m {
		return m
	}
	return offset
}

// ScrollToItem returns the scroll offset that makes [top, top+height) fully
// visible with the least movement. If the item already fits, current is
// returned unchanged. Items taller than the container are aligned to their
// top edge.
func ScrollToItem(top, height, current, containerHeight float64) float64 {
	bottom := top + height
	switch {
	case top < current:
		return top
	case bottom > current+containerHeight:
		if height > containerHeight {
			return top
		}
		return bottom - containerHeight
	}
	return current
}
