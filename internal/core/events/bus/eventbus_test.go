package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("node.started", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("node.started", "npc-1", 123)))
	require.NoError(t, b.Publish(NewEvent("node.finished", "npc-1", nil)))

	require.Len(t, got, 1)
	assert.Equal(t, "npc-1", got[0].Source())
	assert.Equal(t, 123, got[0].Data())
	assert.False(t, got[0].Timestamp().IsZero())
}

func TestWildcardAndOrder(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(Wildcard, func(e Event) error { order = append(order, "all:"+e.Type()); return nil })
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a1"); return nil })
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a2"); return nil })

	require.NoError(t, b.Publish(NewEvent("a", "src", nil)))
	require.NoError(t, b.Publish(NewEvent("b", "src", nil)))

	assert.Equal(t, []string{"all:a", "a1", "a2", "all:b"}, order)
	assert.Equal(t, 3, b.Subscribers())
}

func TestHandlerErrorsJoined(t *testing.T) {
	b := New()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestCancel(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	assert.True(t, sub.IsActive())
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())

	_ = b.Publish(NewEvent("x", "src", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	_ = b.Publish(NewEvent("x", "src", nil))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
	assert.Zero(t, b.Subscribers())
	assert.NoError(t, b.Unsubscribe(nil))

	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	_, _ = b.Subscribe("tick", func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("tick", "src", j))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, count)
}

func TestMetricsWithoutObservers(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_, _ = b.Subscribe(Wildcard, func(Event) error { return errors.New("boom") })
	for i := 0; i < 3; i++ {
		_ = b.Publish(NewEvent("e", "s", nil))
	}
	m := b.GetMetrics()
	assert.Equal(t, uint64(3), m.Published)
	assert.Equal(t, uint64(6), m.DeliveredHandlers)
	assert.Equal(t, uint64(3), m.Errors)
	assert.Equal(t, uint64(2), m.SubscribersActive)
}

func TestObserverNotifications(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, uint64(2), b.GetMetrics().Published)
}
