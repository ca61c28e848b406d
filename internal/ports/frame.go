// Package ports define the frame scheduling and randomness abstractions.
package ports

// FrameID identifies a requested frame so it can be cancelled.
type FrameID uint64

// FrameCallback receives a monotonically increasing timestamp in milliseconds.
type FrameCallback func(timestamp float64)

// FrameScheduler is the host's per-frame scheduling primitive.
// A request fires once; render loops re-arm themselves from inside the callback.
//
// Thread-safety: implementations must allow RequestFrame and CancelFrame to be
// called from any goroutine, including from inside a callback. A cancelled
// request must never fire.
type FrameScheduler interface {
	// RequestFrame schedules cb for the next frame.
	RequestFrame(cb FrameCallback) FrameID

	// CancelFrame drops a pending request. Unknown or already-fired IDs are a no-op.
	CancelFrame(id FrameID)
}

// Random is the uniform random source used throughout the simulation.
// It must return values in [0, 1). *math/rand.Rand satisfies it.
type Random interface {
	Float64() float64
}
