// Package boundary isolates rendering faults. A panic while drawing one list
// row is recovered, logged and replaced by a placeholder so the rest of the
// frame, the viewport and the scroll position survive.
package boundary

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/miosa/vscroll/style"
)

// RenderError describes a recovered render panic.
type RenderError struct {
	Name  string // what was being rendered, e.g. "row 42"
	Value any    // the recovered panic value
	Stack []byte
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: panic: %v", e.Name, e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *RenderError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Boundary recovers render panics and counts them. The zero value is not
// usable; construct with New. A Boundary is safe for concurrent use.
type Boundary struct {
	logger *zap.Logger
	faults atomic.Int64
	last   atomic.Pointer[RenderError]
}

// New returns a Boundary that logs faults to logger. A nil logger discards
// them.
func New(logger *zap.Logger) *Boundary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boundary{logger: logger}
}

// Guard runs fn and returns its output. If fn panics, Guard returns "" and a
// *RenderError instead.
func (b *Boundary) Guard(name string, fn func() string) (out string, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rerr := &RenderError{Name: name, Value: r, Stack: debug.Stack()}
		b.faults.Add(1)
		b.last.Store(rerr)
		b.logger.Error("render fault",
			zap.String("target", name),
			zap.Any("panic", r),
			zap.ByteString("stack", rerr.Stack),
		)
		out, err = "", rerr
	}()
	return fn(), nil
}

// Faults returns how many panics have been recovered.
func (b *Boundary) Faults() int64 { return b.faults.Load() }

// LastFault returns the most recent fault, or nil.
func (b *Boundary) LastFault() *RenderError { return b.last.Load() }

// Fallback renders a one-line placeholder for a failed row, truncated to
// width.
func Fallback(width int, err error) string {
	text := "⚠ render failed"
	var rerr *RenderError
	if errors.As(err, &rerr) {
		text = fmt.Sprintf("⚠ %s failed: %v", rerr.Name, rerr.Value)
	}
	if width > 0 {
		text = lipgloss.NewStyle().MaxWidth(width).Render(text)
	}
	return style.RowFault.Render(text)
}
