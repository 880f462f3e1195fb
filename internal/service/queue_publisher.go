// Package queue_publisher publishes recap change events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/tour-ops-dashboard/internal/queue"
)

// Publisher sends RecapChanged events to the recap.changed queue.  It dials
// per publish: writes are rare (operators editing a slot or a mapping) so
// a long-lived channel is not worth its reconnect handling.
type Publisher struct {
    URL string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
    return &Publisher{URL: url}
}

// PublishRecapChanged fills in the event id and timestamp when missing and
// publishes the event as a persistent message.
func (p *Publisher) PublishRecapChanged(ctx context.Context, event q.RecapChanged) error {
    if event.ID == "" {
        event.ID = uuid.NewString()
    }
    if event.ChangedAt == "" {
        event.ChangedAt = time.Now().UTC().Format(time.RFC3339)
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(q.RecapChangedQueue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    event.ID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.RecapChangedQueue, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
