package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/miosa/vscroll/window"
)

var rangeOpts struct {
	count    int
	size     float64
	offset   float64
	height   float64
	overscan int
	asJSON   bool
}

// rangeCmd prints the window the calculator picks for the given inputs.
var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Print the visible range for a list and viewport",
	Long: `Computes which items a virtualized list would render.

Example:
  vscroll range --count 10000 --size 80 --offset 8000 --height 500 --overscan 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vp := window.Viewport{ScrollOffset: rangeOpts.offset, ContainerHeight: rangeOpts.height}
		r, err := window.ComputeVisibleRange(rangeOpts.count, rangeOpts.size, vp, rangeOpts.overscan)
		if err != nil {
			return err
		}
		if rangeOpts.asJSON {
			return writeRangeJSON(cmd.OutOrStdout(), r)
		}
		return writeRangeText(cmd.OutOrStdout(), r)
	},
}

func init() {
	f := rangeCmd.Flags()
	f.IntVar(&rangeOpts.count, "count", 10000, "Number of items")
	f.Float64Var(&rangeOpts.size, "size", 1, "Estimated size of one item")
	f.Float64Var(&rangeOpts.offset, "offset", 0, "Scroll offset")
	f.Float64Var(&rangeOpts.height, "height", 24, "Container height")
	f.IntVar(&rangeOpts.overscan, "overscan", 5, "Items rendered past each edge")
	f.BoolVar(&rangeOpts.asJSON, "json", false, "Print JSON")
}

type rangeJSON struct {
	Start       int          `json:"start"`
	End         int          `json:"end"`
	Count       int          `json:"count"`
	TotalHeight float64      `json:"total_height"`
	Offsets     []offsetJSON `json:"offsets"`
}

type offsetJSON struct {
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

func writeRangeJSON(w io.Writer, r window.VisibleRange) error {
	out := rangeJSON{
		Start:       r.StartIndex,
		End:         r.EndIndex,
		Count:       r.Len(),
		TotalHeight: r.TotalHeight,
		Offsets:     make([]offsetJSON, 0, len(r.Offsets)),
	}
	for _, o := range r.Offsets {
		out.Offsets = append(out.Offsets, offsetJSON{Index: o.Index, Top: o.Top, Height: o.Height})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeRangeText(w io.Writer, r window.VisibleRange) error {
	if r.Empty() {
		_, err := fmt.Fprintf(w, "empty (total height %g)\n", r.TotalHeight)
		return err
	}
	if _, err := fmt.Fprintf(w, "%d..%d (%d items), total height %g\n",
		r.StartIndex, r.EndIndex, r.Len(), r.TotalHeight); err != nil {
		return err
	}
	for _, o := range r.Offsets {
		if _, err := fmt.Fprintf(w, "  %6d  top %-10g height %g\n", o.Index, o.Top, o.Height); err != nil {
			return err
		}
	}
	return nil
}
