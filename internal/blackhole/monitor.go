package blackhole

const (
	monitorWindowMs  = 2000.0
	monitorThreshold = 0.8 // fraction of the frame cap considered healthy
)

// FrameSample is one measurement window of the FrameMonitor.
type FrameSample struct {
	FPS       float64
	FrameTime float64 // milliseconds per executed frame
	Degraded  bool
}

// FrameMonitor measures the executed frame rate over 2 s windows of frame
// timestamps and flags windows that fall below 80% of the cap.
type FrameMonitor struct {
	start   float64
	frames  int
	started bool
}

// NewFrameMonitor creates a monitor whose first window opens on the first Record.
func NewFrameMonitor() *FrameMonitor {
	return &FrameMonitor{}
}

// Record counts an executed frame at ts (ms). When a window closes it returns
// the sample and true.
func (m *FrameMonitor) Record(ts float64, frameRateCap int) (FrameSample, bool) {
	if !m.started {
		m.start, m.frames, m.started = ts, 0, true
		return FrameSample{}, false
	}

	m.frames++
	span := ts - m.start
	if span < monitorWindowMs {
		return FrameSample{}, false
	}

	sample := FrameSample{
		FPS:       float64(m.frames) / (span / 1000),
		FrameTime: span / float64(m.frames),
	}
	sample.Degraded = frameRateCap > 0 && sample.FPS < float64(frameRateCap)*monitorThreshold

	m.start, m.frames = ts, 0
	return sample, true
}

// Reset discards the open window. Called when rendering pauses so idle time
// is not counted as slow frames.
func (m *FrameMonitor) Reset() {
	m.started = false
	m.frames = 0
}
