package queue_publisher

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    q "github.com/iliyamo/tour-ops-dashboard/internal/queue"
)

type fakePublisher struct {
    mu     sync.Mutex
    events []q.RecapChanged
    err    error
}

func (f *fakePublisher) PublishRecapChanged(_ context.Context, ev q.RecapChanged) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.events = append(f.events, ev)
    return f.err
}

func (f *fakePublisher) count() int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return len(f.events)
}

func TestNotifierInvalidatesThenPublishes(t *testing.T) {
    pub := &fakePublisher{}
    invalidated := 0
    n := &Notifier{
        Publisher: pub,
        Invalidate: func(context.Context) (int, error) {
            invalidated++
            return 3, nil
        },
    }

    n.RecapChanged(context.Background(), q.RecapChanged{Reason: q.ReasonGuides, AvailabilityID: 5})

    assert.Equal(t, 1, invalidated)
    require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
    assert.Equal(t, int64(5), pub.events[0].AvailabilityID)
}

func TestNotifierSwallowsFailures(t *testing.T) {
    pub := &fakePublisher{err: errors.New("broker down")}
    n := &Notifier{
        Publisher:  pub,
        Invalidate: func(context.Context) (int, error) { return 0, errors.New("redis down") },
    }

    assert.NotPanics(t, func() { n.RecapChanged(context.Background(), q.RecapChanged{Reason: q.ReasonMappings}) })
    require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

    var nilNotifier *Notifier
    assert.NotPanics(t, func() { nilNotifier.RecapChanged(context.Background(), q.RecapChanged{}) })
}
