package frame

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// DefaultRate is the Ticker frequency. It runs above every frame-rate cap so
// the engine's budget, not the host clock, decides which frames execute.
const DefaultRate = 120

// Ticker fires pending requests from a background goroutine driven by a
// time.Ticker. Timestamps are milliseconds since Start.
type Ticker struct {
	logger   *slog.Logger
	interval time.Duration
	q        *queue

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewTicker creates a stopped ticker firing rate times per second.
// A non-positive rate selects DefaultRate.
func NewTicker(rate int) *Ticker {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Ticker{
		interval: time.Second / time.Duration(rate),
		q:        newQueue(),
	}
}

// SetLogger sets the logger for this ticker.
func (t *Ticker) SetLogger(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
}

// RequestFrame implements ports.FrameScheduler.
func (t *Ticker) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	return t.q.request(cb)
}

// CancelFrame implements ports.FrameScheduler.
func (t *Ticker) CancelFrame(id ports.FrameID) {
	t.q.cancel(id)
}

// Start launches the ticking goroutine. Calling Start on a running ticker is a no-op.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	if t.logger != nil {
		t.logger.Debug("frame ticker started", slog.Duration("interval", t.interval))
	}
	go t.loop(t.stop, t.done)
}

func (t *Ticker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	start := time.Now()

	for {
		select {
		case <-stop:
			return
		case now := <-tk.C:
			t.q.fire(float64(now.Sub(start)) / float64(time.Millisecond))
		}
	}
}

// Stop halts the goroutine, waits for it to exit and drops pending requests.
// It must not be called from inside a frame callback.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
	t.q.clear()

	if t.logger != nil {
		t.logger.Debug("frame ticker stopped")
	}
}

// Pending returns the number of armed requests.
func (t *Ticker) Pending() int {
	return t.q.len()
}

var _ ports.FrameScheduler = (*Ticker)(nil)
