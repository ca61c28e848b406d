// Package ports define the VoiceSession interface for live voice feedback.
package ports

import "context"

// VoiceSession is the interface for the voice-call signalling collaborator.
// It publishes domain.Voice* events on the bus it was constructed with.
//
// Implementations own their goroutines: Start returns once the session is
// running and Close stops it and waits for all goroutines to exit.
type VoiceSession interface {
	// Start connects the session. It returns an error if the session cannot start
	// or is already running.
	Start(ctx context.Context) error

	// Close ends the session. Calling Close more than once is a no-op.
	Close() error
}
