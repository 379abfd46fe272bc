package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers user events. Implementations must be safe for
// concurrent use.
type Publisher interface {
    Publish(ctx context.Context, ev UserEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, UserEvent) error { return nil }

// DefaultDialTimeout bounds connecting plus the AMQP handshake.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes events to QueueName on the default exchange. It
// dials per publish: user mutations are rare enough that a pooled channel
// is not worth the reconnect handling.
type AMQPPublisher struct {
    URL         string
    DialTimeout time.Duration
}

func NewAMQPPublisher(url string) *AMQPPublisher {
    return &AMQPPublisher{URL: url, DialTimeout: DefaultDialTimeout}
}

// dialTimeout is DialTimeout, shortened to whatever is left of ctx.
func (p *AMQPPublisher) dialTimeout(ctx context.Context) time.Duration {
    d := p.DialTimeout
    if d <= 0 {
        d = DefaultDialTimeout
    }
    if dl, ok := ctx.Deadline(); ok {
        if left := time.Until(dl); left < d {
            d = left
        }
    }
    return d
}

// Publish marshals ev and sends it as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev UserEvent) error {
    d := p.dialTimeout(ctx)
    if d <= 0 {
        return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(d)})
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := declareQueue(ch); err != nil {
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}

// declareQueue ensures the queue exists (idempotent). Durable so messages
// survive broker restarts.
func declareQueue(ch *amqp.Channel) error {
    if _, err := ch.QueueDeclare(
        QueueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
