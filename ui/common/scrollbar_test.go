package common

import (
	"strings"
	"testing"
)

func TestThumb_ContentFits(t *testing.T) {
	if _, _, ok := NewScrollbar(10, 10, 0).Thumb(); ok {
		t.Error("no thumb expected when content fits")
	}
	out := Scrollbar(3, 2, 0)
	if got := strings.Count(out, "\n") + 1; got != 3 {
		t.Errorf("want 3 blank rows, got %d", got)
	}
	if strings.TrimSpace(strings.ReplaceAll(out, "\n", "")) != "" {
		t.Errorf("want blank column, got %q", out)
	}
}

func TestThumb_Proportions(t *testing.T) {
	tests := []struct {
		name       string
		vh         int
		ch, offset float64
		wantTop    int
		wantHeight int
	}{
		{"top", 10, 100, 0, 0, 1},
		{"bottom", 10, 100, 90, 9, 1},
		{"half content", 10, 20, 0, 0, 5},
		{"half scrolled", 10, 20, 5, 3, 5},
		{"huge list keeps one row", 20, 800000, 400000, 10, 1},
		{"offset past end clamps", 10, 20, 50, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, h, ok := NewScrollbar(tt.vh, tt.ch, tt.offset).Thumb()
			if !ok {
				t.Fatal("want a thumb")
			}
			if top != tt.wantTop || h != tt.wantHeight {
				t.Errorf("want top=%d height=%d, got top=%d height=%d", tt.wantTop, tt.wantHeight, top, h)
			}
		})
	}
}

func TestScrollbar_RowCount(t *testing.T) {
	out := Scrollbar(7, 1000, 10)
	if got := len(strings.Split(out, "\n")); got != 7 {
		t.Errorf("want 7 rows, got %d", got)
	}
	if !strings.Contains(out, scrollThumbChar) {
		t.Errorf("want a thumb glyph in %q", out)
	}
}
