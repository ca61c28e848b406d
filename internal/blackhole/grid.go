package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	gridCellSize           = 20.0
	gridCutoffRadii        = 20.0 // points beyond 20R are never refreshed
	gridMaxDistortRadii    = 15.0
	gridDrawChance         = 0.85 // draw when rand > 0.85
	gridMinLineIntensity   = 0.05
	defaultUpdateInterval  = 3
	gridLineWidth          = 0.5
	gridNoiseScale         = 0.005
	gridNoiseTimeScale     = 0.1
	gridNoiseDisplacement  = 0.2
	gridLineAlphaPerFactor = 0.05
)

// DistortionGrid is the spacetime lattice pulled towards the singularity.
// Only every UpdateInterval-th column is refreshed per tick; the rest keep
// their previous displacement until their turn comes round.
type DistortionGrid struct {
	noise          *NoiseField
	updateInterval int

	cols, rows int
	points     []domain.GridPoint // row-major
}

// NewDistortionGrid creates an empty grid. Call Build before Update.
// An updateInterval below 1 selects the default of 3.
func NewDistortionGrid(noise *NoiseField, updateInterval int) *DistortionGrid {
	if updateInterval < 1 {
		updateInterval = defaultUpdateInterval
	}
	return &DistortionGrid{noise: noise, updateInterval: updateInterval}
}

// Build lays out a fresh lattice covering a w×h logical area.
func (g *DistortionGrid) Build(w, h float64) {
	g.cols = int(math.Ceil(w / gridCellSize))
	g.rows = int(math.Ceil(h / gridCellSize))
	if g.cols < 0 || g.rows < 0 {
		g.cols, g.rows = 0, 0
	}

	g.points = make([]domain.GridPoint, g.cols*g.rows)
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			ox, oy := float64(x)*gridCellSize, float64(y)*gridCellSize
			g.points[y*g.cols+x] = domain.GridPoint{
				OriginalX: ox,
				OriginalY: oy,
				DisplayX:  ox,
				DisplayY:  oy,
			}
		}
	}
}

// Dimensions returns the lattice size in columns and rows.
func (g *DistortionGrid) Dimensions() (cols, rows int) {
	return g.cols, g.rows
}

// At returns the point at (col, row).
func (g *DistortionGrid) At(col, row int) (domain.GridPoint, bool) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return domain.GridPoint{}, false
	}
	return g.points[row*g.cols+col], true
}

// Update refreshes the active column subset at simulation time t (seconds).
func (g *DistortionGrid) Update(fx, fy, r, t float64) {
	if r <= 0 {
		return
	}

	k := g.updateInterval
	startX := int(math.Floor(math.Mod(t*100, float64(k))))
	if startX < 0 || startX >= k {
		startX = 0
	}

	maxDistort := r * gridMaxDistortRadii
	for y := 0; y < g.rows; y++ {
		row := g.points[y*g.cols : (y+1)*g.cols]
		for x := startX; x < g.cols; x += k {
			p := &row[x]

			dx := p.OriginalX - fx
			dy := p.OriginalY - fy
			d := math.Hypot(dx, dy)
			if d > r*gridCutoffRadii {
				continue
			}

			factor := math.Max(0, 1-d/maxDistort)
			n := g.noise.Noise(p.OriginalX*gridNoiseScale+t*gridNoiseTimeScale,
				p.OriginalY*gridNoiseScale+t*gridNoiseTimeScale)*2 - 1

			angle := math.Atan2(dy, dx)
			amount := factor * factor * r * 2
			p.DistortionAmount = amount

			shift := amount * (1 + n*gridNoiseDisplacement)
			p.DisplayX = p.OriginalX - math.Cos(angle)*shift
			p.DisplayY = p.OriginalY - math.Sin(angle)*shift
		}
	}
}

// Draw strokes faint lines from every other lattice point near the singularity
// to its right and lower neighbours two cells away.
func (g *DistortionGrid) Draw(s ports.Surface, fx, fy, r float64) {
	if r <= 0 {
		return
	}

	drawRadius := r * gridMaxDistortRadii
	for y := 0; y+2 < g.rows; y += 2 {
		for x := 0; x+2 < g.cols; x += 2 {
			p := g.points[y*g.cols+x]
			if math.Hypot(p.OriginalX-fx, p.OriginalY-fy) > drawRadius {
				continue
			}

			intensity := p.DistortionAmount / (r * 2)
			if intensity <= gridMinLineIntensity {
				continue
			}

			paint := ports.Solid(rgba(20, 20, 30, intensity*gridLineAlphaPerFactor))
			right := g.points[y*g.cols+x+2]
			below := g.points[(y+2)*g.cols+x]
			s.Line(p.DisplayX, p.DisplayY, right.DisplayX, right.DisplayY, gridLineWidth, ports.CapButt, paint)
			s.Line(p.DisplayX, p.DisplayY, below.DisplayX, below.DisplayY, gridLineWidth, ports.CapButt, paint)
		}
	}
}
