// Package domain defines events for the event-driven architecture.
// Hosts publish viewport and voice events; the engine and services subscribe.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Host surface events
	EventVisibilityChanged EventType = "viewport.visibility"
	EventViewportResized   EventType = "viewport.resized"

	// Engine events
	EventPerformanceDegraded EventType = "engine.degraded"

	// Voice session events
	EventVoiceCallStarted   EventType = "voice.call_started"
	EventVoiceCallEnded     EventType = "voice.call_ended"
	EventVoiceSpeechStarted EventType = "voice.speech_started"
	EventVoiceSpeechEnded   EventType = "voice.speech_ended"
	EventVoiceUserSpeech    EventType = "voice.user_speech"
	EventVoiceVolume        EventType = "voice.volume"
	EventVoiceBands         EventType = "voice.bands"
	EventVoiceError         EventType = "voice.error"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// VisibilityChangedEvent is published when the rendering surface enters or leaves the viewport.
type VisibilityChangedEvent struct {
	baseEvent
	Visible bool
}

// Type returns the event type.
func (e VisibilityChangedEvent) Type() EventType {
	return EventVisibilityChanged
}

// NewVisibilityChangedEvent creates a new VisibilityChangedEvent.
func NewVisibilityChangedEvent(visible bool) VisibilityChangedEvent {
	return VisibilityChangedEvent{
		baseEvent: newBaseEvent(),
		Visible:   visible,
	}
}

// ViewportResizedEvent is published when the host surface changes size.
type ViewportResizedEvent struct {
	baseEvent
	Viewport Viewport
}

// Type returns the event type.
func (e ViewportResizedEvent) Type() EventType {
	return EventViewportResized
}

// NewViewportResizedEvent creates a new ViewportResizedEvent.
func NewViewportResizedEvent(width, height int, dpr float64) ViewportResizedEvent {
	return ViewportResizedEvent{
		baseEvent: newBaseEvent(),
		Viewport:  Viewport{Width: width, Height: height, DevicePixelRatio: dpr},
	}
}

// PerformanceDegradedEvent is published when the measured frame rate falls below budget.
type PerformanceDegradedEvent struct {
	baseEvent
	FPS       float64
	FrameTime float64 // milliseconds
	Tier      QualityTier
}

// Type returns the event type.
func (e PerformanceDegradedEvent) Type() EventType {
	return EventPerformanceDegraded
}

// NewPerformanceDegradedEvent creates a new PerformanceDegradedEvent.
func NewPerformanceDegradedEvent(fps, frameTime float64, tier QualityTier) PerformanceDegradedEvent {
	return PerformanceDegradedEvent{
		baseEvent: newBaseEvent(),
		FPS:       fps,
		FrameTime: frameTime,
		Tier:      tier,
	}
}

// VoiceCallStartedEvent is published when a voice call connects.
type VoiceCallStartedEvent struct {
	baseEvent
	Title string // Optional session description (e.g. source file metadata)
}

// Type returns the event type.
func (e VoiceCallStartedEvent) Type() EventType {
	return EventVoiceCallStarted
}

// NewVoiceCallStartedEvent creates a new VoiceCallStartedEvent.
func NewVoiceCallStartedEvent(title string) VoiceCallStartedEvent {
	return VoiceCallStartedEvent{
		baseEvent: newBaseEvent(),
		Title:     title,
	}
}

// VoiceCallEndedEvent is published when a voice call ends.
type VoiceCallEndedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e VoiceCallEndedEvent) Type() EventType {
	return EventVoiceCallEnded
}

// NewVoiceCallEndedEvent creates a new VoiceCallEndedEvent.
func NewVoiceCallEndedEvent() VoiceCallEndedEvent {
	return VoiceCallEndedEvent{baseEvent: newBaseEvent()}
}

// VoiceSpeechStartedEvent is published when the assistant starts speaking.
type VoiceSpeechStartedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e VoiceSpeechStartedEvent) Type() EventType {
	return EventVoiceSpeechStarted
}

// NewVoiceSpeechStartedEvent creates a new VoiceSpeechStartedEvent.
func NewVoiceSpeechStartedEvent() VoiceSpeechStartedEvent {
	return VoiceSpeechStartedEvent{baseEvent: newBaseEvent()}
}

// VoiceSpeechEndedEvent is published when the assistant stops speaking.
type VoiceSpeechEndedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e VoiceSpeechEndedEvent) Type() EventType {
	return EventVoiceSpeechEnded
}

// NewVoiceSpeechEndedEvent creates a new VoiceSpeechEndedEvent.
func NewVoiceSpeechEndedEvent() VoiceSpeechEndedEvent {
	return VoiceSpeechEndedEvent{baseEvent: newBaseEvent()}
}

// VoiceUserSpeechEvent is published when the user starts or stops speaking.
type VoiceUserSpeechEvent struct {
	baseEvent
	Speaking bool
}

// Type returns the event type.
func (e VoiceUserSpeechEvent) Type() EventType {
	return EventVoiceUserSpeech
}

// NewVoiceUserSpeechEvent creates a new VoiceUserSpeechEvent.
func NewVoiceUserSpeechEvent(speaking bool) VoiceUserSpeechEvent {
	return VoiceUserSpeechEvent{
		baseEvent: newBaseEvent(),
		Speaking:  speaking,
	}
}

// VoiceVolumeEvent carries the overall volume of the current speaker in [0, 1].
type VoiceVolumeEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VoiceVolumeEvent) Type() EventType {
	return EventVoiceVolume
}

// NewVoiceVolumeEvent creates a new VoiceVolumeEvent.
func NewVoiceVolumeEvent(volume float64) VoiceVolumeEvent {
	return VoiceVolumeEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// VoiceBandsEvent carries per-band analyser energies (0-255 scale).
// Sources that can compute a spectrum publish this instead of a bare volume.
type VoiceBandsEvent struct {
	baseEvent
	Bands []float64
}

// Type returns the event type.
func (e VoiceBandsEvent) Type() EventType {
	return EventVoiceBands
}

// NewVoiceBandsEvent creates a new VoiceBandsEvent.
// The slice is copied so publishers may reuse their buffers.
func NewVoiceBandsEvent(bands []float64) VoiceBandsEvent {
	cp := make([]float64, len(bands))
	copy(cp, bands)
	return VoiceBandsEvent{
		baseEvent: newBaseEvent(),
		Bands:     cp,
	}
}

// VoiceErrorEvent is published when the voice session fails.
type VoiceErrorEvent struct {
	baseEvent
	Error error
}

// Type returns the event type.
func (e VoiceErrorEvent) Type() EventType {
	return EventVoiceError
}

// NewVoiceErrorEvent creates a new VoiceErrorEvent.
func NewVoiceErrorEvent(err error) VoiceErrorEvent {
	return VoiceErrorEvent{
		baseEvent: newBaseEvent(),
		Error:     err,
	}
}
