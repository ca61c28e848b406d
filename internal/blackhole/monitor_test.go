package blackhole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMonitor_HealthyWindow(t *testing.T) {
	m := NewFrameMonitor()

	var sample FrameSample
	var closed bool
	for i := 0; i <= 120; i++ {
		if s, ok := m.Record(float64(i)*1000/60, 60); ok {
			sample, closed = s, true
		}
	}
	require.True(t, closed)
	assert.InDelta(t, 60, sample.FPS, 1)
	assert.InDelta(t, 16.67, sample.FrameTime, 0.3)
	assert.False(t, sample.Degraded)
}

func TestFrameMonitor_DegradedWindow(t *testing.T) {
	m := NewFrameMonitor()

	var samples []FrameSample
	for ts := 0.0; ts <= 4100; ts += 50 {
		if s, ok := m.Record(ts, 60); ok {
			samples = append(samples, s)
		}
	}
	require.Len(t, samples, 2)
	for _, s := range samples {
		assert.InDelta(t, 20, s.FPS, 1e-9)
		assert.InDelta(t, 50, s.FrameTime, 1e-9)
		assert.True(t, s.Degraded)
	}
}

func TestFrameMonitor_ThresholdIsEightyPercent(t *testing.T) {
	// 25 fps against a 30 fps cap is above 24
	m := NewFrameMonitor()
	var last FrameSample
	for ts := 0.0; ts <= 2000; ts += 40 {
		if s, ok := m.Record(ts, 30); ok {
			last = s
		}
	}
	assert.False(t, last.Degraded)
}

func TestFrameMonitor_Reset(t *testing.T) {
	m := NewFrameMonitor()
	m.Record(0, 60)
	m.Record(100, 60)
	m.Reset()

	// window re-opens at 5000, so 6000 is mid-window
	_, ok := m.Record(5000, 60)
	assert.False(t, ok)
	_, ok = m.Record(6000, 60)
	assert.False(t, ok)
	s, ok := m.Record(7000, 60)
	require.True(t, ok)
	assert.InDelta(t, 1, s.FPS, 1e-9)
}
