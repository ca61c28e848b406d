// Package mock provides a recording implementation of ports.Surface for tests.
package mock

import (
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// Op names a drawing primitive.
type Op string

// Recorded primitives.
const (
	OpFill         Op = "fill"
	OpFillCircle   Op = "fill_circle"
	OpStrokeCircle Op = "stroke_circle"
	OpFillEllipse  Op = "fill_ellipse"
	OpLine         Op = "line"
	OpPolyline     Op = "polyline"
)

// Call is one recorded draw call.
type Call struct {
	Op     Op
	Args   []float64 // positional arguments in the order of the Surface method
	Points []domain.Point
	Cap    ports.LineCap
	Paint  ports.Paint
}

// Surface records every call it receives.
//
// Thread-safety: safe for concurrent use so tests can inspect it while a
// render loop is drawing.
type Surface struct {
	mu     sync.Mutex
	width  float64
	height float64
	calls  []Call
	counts map[Op]int
}

// NewSurface creates a recording surface of the given logical size.
func NewSurface(width, height float64) *Surface {
	return &Surface{
		width:  width,
		height: height,
		counts: make(map[Op]int),
	}
}

func (s *Surface) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	s.counts[c.Op]++
}

// Size implements ports.Surface.
func (s *Surface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// SetSize changes the reported size.
func (s *Surface) SetSize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

// Fill implements ports.Surface.
func (s *Surface) Fill(p ports.Paint) {
	s.record(Call{Op: OpFill, Paint: p})
}

// FillCircle implements ports.Surface.
func (s *Surface) FillCircle(x, y, r float64, p ports.Paint) {
	s.record(Call{Op: OpFillCircle, Args: []float64{x, y, r}, Paint: p})
}

// StrokeCircle implements ports.Surface.
func (s *Surface) StrokeCircle(x, y, r, width float64, p ports.Paint) {
	s.record(Call{Op: OpStrokeCircle, Args: []float64{x, y, r, width}, Paint: p})
}

// FillEllipse implements ports.Surface.
func (s *Surface) FillEllipse(x, y, rx, ry, rotation float64, p ports.Paint) {
	s.record(Call{Op: OpFillEllipse, Args: []float64{x, y, rx, ry, rotation}, Paint: p})
}

// Line implements ports.Surface.
func (s *Surface) Line(x0, y0, x1, y1, width float64, lineCap ports.LineCap, p ports.Paint) {
	s.record(Call{Op: OpLine, Args: []float64{x0, y0, x1, y1, width}, Cap: lineCap, Paint: p})
}

// Polyline implements ports.Surface. The points are copied.
func (s *Surface) Polyline(pts []domain.Point, width float64, lineCap ports.LineCap, p ports.Paint) {
	s.record(Call{
		Op:     OpPolyline,
		Args:   []float64{width},
		Points: append([]domain.Point(nil), pts...),
		Cap:    lineCap,
		Paint:  p,
	})
}

// Count returns how many times op was called.
func (s *Surface) Count(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[op]
}

// Total returns the number of recorded calls.
func (s *Surface) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Calls returns a copy of the recorded calls.
func (s *Surface) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Reset forgets all recorded calls.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.counts = make(map[Op]int)
}

var _ ports.Surface = (*Surface)(nil)
