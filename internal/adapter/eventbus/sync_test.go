package eventbus

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/singularity/internal/domain"
)

func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus()
	require.NotNil(t, bus)
	assert.Equal(t, 0, bus.SubscriberCount())
	assert.False(t, bus.closed)
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	var calls int

	subID := bus.Subscribe(domain.EventVisibilityChanged, func(event domain.Event) {
		received = event
		calls++
	})
	require.NotEmpty(t, subID)

	bus.Publish(domain.NewVisibilityChangedEvent(false))

	assert.Equal(t, 1, calls)
	require.NotNil(t, received)
	assert.Equal(t, domain.EventVisibilityChanged, received.Type())
	assert.False(t, received.(domain.VisibilityChangedEvent).Visible)
}

func TestDeliveryOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []int
	first := bus.Subscribe(domain.EventVoiceVolume, func(domain.Event) { order = append(order, 1) })
	bus.Subscribe(domain.EventVoiceVolume, func(domain.Event) { order = append(order, 2) })
	bus.Subscribe(domain.EventVoiceVolume, func(domain.Event) { order = append(order, 3) })
	bus.SubscribeAll(func(domain.Event) { order = append(order, 4) })

	bus.Publish(domain.NewVoiceVolumeEvent(0.5))
	assert.Equal(t, []int{1, 2, 3, 4}, order)

	// Removing the head must not reorder the rest
	order = nil
	bus.Unsubscribe(first)
	bus.Publish(domain.NewVoiceVolumeEvent(0.5))
	assert.Equal(t, []int{2, 3, 4}, order)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var calls atomic.Int32
	subID := bus.Subscribe(domain.EventVoiceSpeechStarted, func(domain.Event) { calls.Add(1) })

	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	assert.EqualValues(t, 1, calls.Load())

	bus.Unsubscribe(subID)
	bus.Publish(domain.NewVoiceSpeechStartedEvent())
	assert.EqualValues(t, 1, calls.Load())

	// Unknown IDs are a no-op
	bus.Unsubscribe("invalid-id")
	bus.Unsubscribe("")
	bus.Unsubscribe(subID)
}

func TestSubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var mu sync.Mutex
	var received []domain.EventType
	id := bus.SubscribeAll(func(event domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.Type())
	})

	bus.Publish(domain.NewVoiceCallStartedEvent(""))
	bus.Publish(domain.NewViewportResizedEvent(800, 600, 1))
	bus.Publish(domain.NewVoiceCallEndedEvent())

	mu.Lock()
	assert.Equal(t, []domain.EventType{
		domain.EventVoiceCallStarted,
		domain.EventViewportResized,
		domain.EventVoiceCallEnded,
	}, received)
	mu.Unlock()

	bus.Unsubscribe(id)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestSubscribeFiltered(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var volumes []float64
	bus.SubscribeFiltered(domain.EventVoiceVolume,
		func(e domain.Event) bool { return e.(domain.VoiceVolumeEvent).Volume > 0.01 },
		func(e domain.Event) { volumes = append(volumes, e.(domain.VoiceVolumeEvent).Volume) })

	bus.Publish(domain.NewVoiceVolumeEvent(0))
	bus.Publish(domain.NewVoiceVolumeEvent(0.4))
	bus.Publish(domain.NewVoiceVolumeEvent(0.005))
	bus.Publish(domain.NewVoiceVolumeEvent(0.9))

	assert.Equal(t, []float64{0.4, 0.9}, volumes)
}

func TestHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	assert.False(t, bus.HasSubscribers(domain.EventVoiceVolume))

	bus.Subscribe(domain.EventVoiceVolume, func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventVoiceVolume))
	assert.False(t, bus.HasSubscribers(domain.EventVoiceBands))

	bus.SubscribeAll(func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventVoiceBands))
}

func TestHandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	bus := NewSyncEventBus()
	bus.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer bus.Close()

	var calls atomic.Int32
	bus.Subscribe(domain.EventVoiceError, func(domain.Event) { panic("test panic") })
	bus.Subscribe(domain.EventVoiceError, func(domain.Event) { calls.Add(1) })

	require.NotPanics(t, func() {
		bus.Publish(domain.NewVoiceErrorEvent(domain.ErrSourceClosed))
	})
	assert.EqualValues(t, 1, calls.Load())
	assert.Contains(t, buf.String(), "event handler panicked")
}

func TestClose(t *testing.T) {
	bus := NewSyncEventBus()

	handler := func(domain.Event) {}
	bus.Subscribe(domain.EventVisibilityChanged, handler)
	bus.SubscribeAll(handler)
	assert.Equal(t, 2, bus.SubscriberCount())

	require.NoError(t, bus.Close())
	assert.Equal(t, 0, bus.SubscriberCount())

	// Publishing after close is a no-op
	bus.Publish(domain.NewVisibilityChangedEvent(true))

	assert.Error(t, bus.Close())
	assert.Panics(t, func() { bus.Subscribe(domain.EventVisibilityChanged, handler) })
}

func TestNilEventAndHandler(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var calls atomic.Int32
	bus.SubscribeAll(func(domain.Event) { calls.Add(1) })
	bus.Publish(nil)
	assert.EqualValues(t, 0, calls.Load())

	assert.Panics(t, func() { bus.Subscribe(domain.EventVoiceVolume, nil) })
	assert.Panics(t, func() { bus.SubscribeAll(nil) })
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var events atomic.Int32
	handler := func(domain.Event) { events.Add(1) }
	bus.Subscribe(domain.EventVoiceVolume, handler)

	const publishers = 5
	const subscribers = 5
	const perPublisher = 100

	var wg sync.WaitGroup
	wg.Add(publishers + subscribers)

	for i := 0; i < publishers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				bus.Publish(domain.NewVoiceVolumeEvent(0.5))
			}
		}()
	}
	for i := 0; i < subscribers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id := bus.Subscribe(domain.EventVoiceVolume, handler)
				time.Sleep(time.Microsecond)
				bus.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	// The permanent handler sees every event
	assert.GreaterOrEqual(t, events.Load(), int32(publishers*perPublisher))
	assert.Equal(t, 1, bus.SubscriberCount())
}
