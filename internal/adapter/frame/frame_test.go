package frame

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/testutil"
)

func TestManual_FiresInRequestOrder(t *testing.T) {
	m := NewManual()

	var order []int
	m.RequestFrame(func(float64) { order = append(order, 1) })
	m.RequestFrame(func(float64) { order = append(order, 2) })
	m.RequestFrame(func(float64) { order = append(order, 3) })

	assert.Equal(t, 3, m.Pending())
	assert.Equal(t, 3, m.Advance(16))
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 16.0, m.Now())
}

func TestManual_CancelledNeverFires(t *testing.T) {
	m := NewManual()

	var fired bool
	id := m.RequestFrame(func(float64) { fired = true })
	m.CancelFrame(id)

	assert.Equal(t, 0, m.Advance(16))
	assert.False(t, fired)

	// Unknown IDs are a no-op
	m.CancelFrame(id)
	m.CancelFrame(12345)
}

func TestManual_CancelFromEarlierCallback(t *testing.T) {
	m := NewManual()

	var second ports.FrameID
	var secondFired bool
	m.RequestFrame(func(float64) { m.CancelFrame(second) })
	second = m.RequestFrame(func(float64) { secondFired = true })

	assert.Equal(t, 1, m.FireAt(100))
	assert.False(t, secondFired)
}

func TestManual_RearmWaitsForNextFire(t *testing.T) {
	m := NewManual()

	var stamps []float64
	var loop ports.FrameCallback
	loop = func(ts float64) {
		stamps = append(stamps, ts)
		m.RequestFrame(loop)
	}
	m.RequestFrame(loop)

	m.FireAt(0)
	m.FireAt(10)
	m.Advance(30)

	assert.Equal(t, []float64{0, 10, 40}, stamps)
	assert.Equal(t, 1, m.Pending())
}

func TestTicker_FiresAndStops(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	tk := NewTicker(200)
	tk.SetLogger(logger.NewTestLogger())
	var count atomic.Int32
	var mu sync.Mutex
	var last float64

	var loop ports.FrameCallback
	loop = func(ts float64) {
		mu.Lock()
		assert.GreaterOrEqual(t, ts, last, "timestamps must be monotonic")
		last = ts
		mu.Unlock()
		count.Add(1)
		tk.RequestFrame(loop)
	}
	tk.RequestFrame(loop)
	tk.Start()
	tk.Start() // no-op

	require.Eventually(t, func() bool { return count.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)

	tk.Stop()
	tk.Stop() // no-op

	after := count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, count.Load(), "no callback may run after Stop")
	assert.Equal(t, 0, tk.Pending())
}

func TestTicker_CancelBeforeFire(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	tk := NewTicker(0)
	var fired atomic.Bool
	id := tk.RequestFrame(func(float64) { fired.Store(true) })
	tk.CancelFrame(id)

	tk.Start()
	time.Sleep(30 * time.Millisecond)
	tk.Stop()

	assert.False(t, fired.Load())
}
