package queue_publisher

import (
    "context"
    "log"
    "time"

    q "github.com/iliyamo/tour-ops-dashboard/internal/queue"
)

// EventPublisher is the part of Publisher the Notifier needs.
type EventPublisher interface {
    PublishRecapChanged(ctx context.Context, event q.RecapChanged) error
}

// Notifier is called by handlers after a successful write.  It drops the
// local recap cache right away and then tells the other instances through
// the change feed.  Neither step can fail the write that triggered it.
type Notifier struct {
    Publisher  EventPublisher
    Invalidate func(ctx context.Context) (int, error)
    Timeout    time.Duration
}

// RecapChanged invalidates and publishes ev.  Publishing happens in the
// background with its own timeout so a slow broker never delays the
// response.
func (n *Notifier) RecapChanged(ctx context.Context, ev q.RecapChanged) {
    if n == nil {
        return
    }
    if n.Invalidate != nil {
        if _, err := n.Invalidate(ctx); err != nil {
            log.Printf("recap-cache: invalidate after %s failed: %v", ev.Reason, err)
        }
    }
    if n.Publisher == nil {
        return
    }
    timeout := n.Timeout
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    go func() {
        pctx, cancel := context.WithTimeout(context.Background(), timeout)
        defer cancel()
        _ = n.Publisher.PublishRecapChanged(pctx, ev)
    }()
}
