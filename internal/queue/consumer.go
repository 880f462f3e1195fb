package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

// StartRecapConsumer connects to RabbitMQ, declares the recap.changed queue
// (durable) and hands every decoded event to onChange.  It reconnects with
// exponential backoff whenever the broker goes away and only returns once
// ctx is cancelled.  Undecodable messages are rejected without requeue so
// a poison message cannot spin the loop.
func StartRecapConsumer(ctx context.Context, url string, onChange func(RecapChanged)) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("recap-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < maxBackoff {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, onChange)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("recap-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, onChange func(RecapChanged)) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("recap-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(RecapChangedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, RecapChangedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, onChange); err != nil {
            log.Printf("recap-consumer: handle message %s failed: %v", d.MessageId, err)
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, onChange func(RecapChanged)) error {
    var ev RecapChanged
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Reason == "" {
        return errors.New("event without reason")
    }
    onChange(ev)
    return nil
}
