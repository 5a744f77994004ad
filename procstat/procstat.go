// Package procstat samples this process's resource usage, so the header can
// show what rendering a windowed list actually costs.
package procstat

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultInterval is the refresh rate of Watch.
const DefaultInterval = 2 * time.Second

// Stats is one sample.
type Stats struct {
	RSS        uint64  // resident set size in bytes
	CPU        float64 // percent of one core since the process started
	MemPercent float32 // RSS as a percent of system memory
	Goroutines int
	SystemMem  uint64 // total system memory in bytes
}

// String renders the sample for a status line: "rss 42.1 MB · cpu 3.2%".
func (s Stats) String() string {
	return fmt.Sprintf("rss %s · cpu %.1f%%", FormatBytes(s.RSS), s.CPU)
}

// Sampler reads Stats for one process.
type Sampler struct {
	proc *process.Process
}

// New returns a Sampler for the current process.
func New(ctx context.Context) (*Sampler, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &Sampler{proc: p}, nil
}

// Sample takes one reading.
func (s *Sampler) Sample(ctx context.Context) (Stats, error) {
	mi, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("memory info: %w", err)
	}
	cpu, err := s.proc.CPUPercentWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("cpu percent: %w", err)
	}
	st := Stats{
		RSS:        mi.RSS,
		CPU:        cpu,
		Goroutines: runtime.NumGoroutine(),
	}
	// System totals are best-effort; some sandboxes hide them.
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		st.SystemMem = vm.Total
		st.MemPercent = float32(float64(mi.RSS) / float64(vm.Total) * 100)
	}
	return st, nil
}

// -- Bubble Tea ---------------------------------------------------------------

// SampleMsg carries a reading (or the error that prevented one).
type SampleMsg struct {
	Stats Stats
	Err   error
}

// Cmd samples once after interval.
func (s *Sampler) Cmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		st, err := s.Sample(ctx)
		return SampleMsg{Stats: st, Err: err}
	})
}

// FormatBytes returns a compact size: 1536 → "1.5 KB".
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
