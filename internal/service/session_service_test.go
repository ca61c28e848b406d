package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/singularity/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/singularity/internal/adapter/voice/mock"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/testutil"
	"github.com/tejashwikalptaru/singularity/internal/voiceviz"
)

var _ LevelSink = (*voiceviz.Visualizer)(nil)

// recordingSink keeps the last values pushed to one side of the call.
type recordingSink struct {
	mu     sync.Mutex
	levels []float64
	active bool
	status domain.VoiceStatus
}

func (r *recordingSink) SetLevels(levels []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append([]float64(nil), levels...)
}

func (r *recordingSink) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
}

func (r *recordingSink) SetStatus(status domain.VoiceStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *recordingSink) snapshot() ([]float64, bool, domain.VoiceStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.levels...), r.active, r.status
}

// Helper to create a test session service driven by bus events only
func newTestSessionService() (*SessionService, *eventbus.SyncEventBus, *recordingSink, *recordingSink) {
	bus := eventbus.NewSyncEventBus()
	ai, user := &recordingSink{}, &recordingSink{}
	return NewSessionService(logger.NewTestLogger(), bus, nil, ai, user), bus, ai, user
}

func TestVolumeToLevels(t *testing.T) {
	levels := VolumeToLevels(0.5)
	assert.InDelta(t, 255*0.5*0.5, levels[0], 1e-9)
	assert.InDelta(t, 255*0.5*(0.5+0.5*0.8414709848078965), levels[5], 1e-9)

	assert.Equal(t, [voiceviz.NumBands]float64{}, VolumeToLevels(0))
	assert.Equal(t, [voiceviz.NumBands]float64{}, VolumeToLevels(-1))
	assert.Equal(t, VolumeToLevels(1), VolumeToLevels(4))
}

func TestSessionService_StatusFlow(t *testing.T) {
	s, bus, ai, user := newTestSessionService()
	defer s.Shutdown()

	_, _, status := ai.snapshot()
	assert.Equal(t, domain.VoiceIdle, status)

	// speech outside a call is ignored
	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	assert.Equal(t, domain.VoiceIdle, s.State().Status)

	bus.Publish(domain.NewVoiceCallStartedEvent("demo"))
	assert.Equal(t, domain.VoiceConnected, s.State().Status)

	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	assert.Equal(t, SessionState{Status: domain.VoiceSpeaking, Speaker: domain.SpeakerAssistant}, s.State())
	_, aiActive, aiStatus := ai.snapshot()
	_, userActive, userStatus := user.snapshot()
	assert.True(t, aiActive)
	assert.False(t, userActive)
	assert.Equal(t, domain.VoiceSpeaking, aiStatus)
	assert.Equal(t, domain.VoiceSpeaking, userStatus)

	bus.Publish(domain.NewVoiceSpeechEndedEvent())
	assert.Equal(t, domain.VoiceConnected, s.State().Status)

	bus.Publish(domain.NewVoiceUserSpeechEvent(true))
	assert.Equal(t, SessionState{Status: domain.VoiceListening, Speaker: domain.SpeakerUser}, s.State())
	_, userActive, _ = user.snapshot()
	assert.True(t, userActive)

	// the assistant ending speech does not interrupt the user
	bus.Publish(domain.NewVoiceSpeechEndedEvent())
	assert.Equal(t, domain.VoiceListening, s.State().Status)

	bus.Publish(domain.NewVoiceUserSpeechEvent(false))
	assert.Equal(t, domain.VoiceConnected, s.State().Status)

	bus.Publish(domain.NewVoiceCallEndedEvent())
	assert.Equal(t, SessionState{Status: domain.VoiceIdle, Speaker: domain.SpeakerNone}, s.State())
}

func TestSessionService_RoutesLevels(t *testing.T) {
	s, bus, ai, user := newTestSessionService()
	defer s.Shutdown()

	bus.Publish(domain.NewVoiceCallStartedEvent(""))
	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	bus.Publish(domain.NewVoiceVolumeEvent(0.8))
	s.Step()

	want := VolumeToLevels(0.8)
	aiLevels, _, _ := ai.snapshot()
	userLevels, _, _ := user.snapshot()
	assert.Equal(t, want[:], aiLevels)
	assert.Equal(t, make([]float64, voiceviz.NumBands), userLevels)

	bus.Publish(domain.NewVoiceSpeechEndedEvent())
	bus.Publish(domain.NewVoiceUserSpeechEvent(true))
	s.Step()
	aiLevels, _, _ = ai.snapshot()
	userLevels, _, _ = user.snapshot()
	assert.Equal(t, make([]float64, voiceviz.NumBands), aiLevels)
	assert.Equal(t, make([]float64, voiceviz.NumBands), userLevels, "a new speaker starts silent")

	bus.Publish(domain.NewVoiceVolumeEvent(0.3))
	s.Step()
	want = VolumeToLevels(0.3)
	userLevels, _, _ = user.snapshot()
	assert.Equal(t, want[:], userLevels)
}

func TestSessionService_DecaysWhenSilent(t *testing.T) {
	s, bus, ai, _ := newTestSessionService()
	defer s.Shutdown()

	bus.Publish(domain.NewVoiceCallStartedEvent(""))
	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	bus.Publish(domain.NewVoiceVolumeEvent(1))
	s.Step()
	peak := s.Levels()

	bus.Publish(domain.NewVoiceSpeechEndedEvent())
	s.Step()
	s.Step()
	levels := s.Levels()
	for i := range levels {
		assert.InDelta(t, peak[i]*0.95*0.95, levels[i], 1e-9)
	}
	aiLevels, active, _ := ai.snapshot()
	assert.False(t, active)
	assert.Equal(t, levels[:], aiLevels, "decay stays on the side that spoke last")

	for i := 0; i < 200; i++ {
		s.Step()
	}
	for _, v := range s.Levels() {
		assert.Less(t, v, 0.01)
	}
}

func TestSessionService_PrefersBands(t *testing.T) {
	s, bus, ai, _ := newTestSessionService()
	defer s.Shutdown()

	bus.Publish(domain.NewVoiceCallStartedEvent(""))
	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	bus.Publish(domain.NewVoiceVolumeEvent(0.2))
	bands := make([]float64, voiceviz.NumBands)
	bands[3] = 200
	bus.Publish(domain.NewVoiceBandsEvent(bands))
	s.Step()

	aiLevels, _, _ := ai.snapshot()
	require.Len(t, aiLevels, voiceviz.NumBands)
	assert.InDelta(t, 160.0, aiLevels[3], 1e-9, "analyser bands are scaled by 0.8")
	for i, v := range aiLevels {
		if i != 3 {
			assert.Zero(t, v)
		}
	}
	assert.Equal(t, 0.2, s.State().Volume)
}

func TestSessionService_VolumeSanitized(t *testing.T) {
	s, bus, _, _ := newTestSessionService()
	defer s.Shutdown()

	bus.Publish(domain.NewVoiceVolumeEvent(7))
	assert.Equal(t, 1.0, s.State().Volume)
	bus.Publish(domain.NewVoiceVolumeEvent(-2))
	assert.Zero(t, s.State().Volume)
}

func TestSessionService_ErrorResets(t *testing.T) {
	s, bus, _, _ := newTestSessionService()
	defer s.Shutdown()

	bus.Publish(domain.NewVoiceCallStartedEvent(""))
	bus.Publish(domain.NewVoiceUserSpeechEvent(true))
	bus.Publish(domain.NewVoiceErrorEvent(errors.New("network")))
	assert.Equal(t, SessionState{Status: domain.VoiceIdle}, s.State())
}

func TestSessionService_ConnectWithMockSession(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := eventbus.NewSyncEventBus()
	session := mock.NewSession(bus, []mock.Step{
		{Delay: time.Millisecond, Kind: mock.StepSpeechStart},
		{Delay: time.Millisecond, Kind: mock.StepVolume, Volume: 0.6},
	}, false)
	ai, user := &recordingSink{}, &recordingSink{}
	s := NewSessionService(nil, bus, session, ai, user)
	s.SetUpdateInterval(time.Millisecond)

	require.NoError(t, s.Connect(context.Background()))
	assert.ErrorIs(t, s.Connect(context.Background()), domain.ErrAlreadyStarted)

	// the script ends the call after its last step
	require.Eventually(t, func() bool {
		return s.State().Status == domain.VoiceIdle
	}, 2*time.Second, time.Millisecond)

	// a finished call can be dialled again
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Hangup())
	assert.Equal(t, domain.VoiceIdle, s.State().Status)
	aiLevels, _, _ := ai.snapshot()
	assert.Equal(t, make([]float64, voiceviz.NumBands), aiLevels)

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.ErrorIs(t, s.Connect(context.Background()), domain.ErrDisposed)
	assert.Zero(t, bus.SubscriberCount())
}

func TestSessionService_ConnectFailure(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := eventbus.NewSyncEventBus()
	session := mock.NewSession(bus, nil, false)
	session.SetFailStart(true)
	ai := &recordingSink{}
	s := NewSessionService(nil, bus, session, ai, nil)
	defer s.Shutdown()

	err := s.Connect(context.Background())
	var srcErr *domain.SourceError
	assert.ErrorAs(t, err, &srcErr)
	assert.Equal(t, domain.VoiceIdle, s.State().Status)
	_, _, status := ai.snapshot()
	assert.Equal(t, domain.VoiceIdle, status)

	noSession := NewSessionService(nil, bus, nil, nil, nil)
	defer noSession.Shutdown()
	assert.ErrorIs(t, noSession.Connect(context.Background()), domain.ErrInvalidConfig)
}

func TestSessionService_SetSession(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := eventbus.NewSyncEventBus()
	s := NewSessionService(nil, bus, nil, nil, nil)
	defer s.Shutdown()

	first := mock.NewSession(bus, []mock.Step{{Delay: time.Hour, Kind: mock.StepSpeechStart}}, false)
	require.NoError(t, s.SetSession(first))
	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, first.Running())

	second := mock.NewSession(bus, nil, false)
	assert.ErrorIs(t, s.SetSession(second), domain.ErrAlreadyStarted)

	require.NoError(t, s.Hangup())
	require.NoError(t, s.SetSession(second))
	assert.False(t, first.Running())

	require.NoError(t, s.Shutdown())
	assert.ErrorIs(t, s.SetSession(first), domain.ErrDisposed)
}
