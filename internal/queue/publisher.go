package queue

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher forwards login attempt events to a durable RabbitMQ queue from
// a single background worker.  Publish never blocks the request path: when
// the buffer is full the event is dropped and counted.
type Publisher struct {
	url     string
	queue   string
	events  chan LoginAttemptEvent
	log     *zap.Logger
	dropped atomic.Uint64
}

// NewPublisher creates a publisher with room for buffer pending events.
// Run must be started for events to leave the process.
func NewPublisher(url, queue string, buffer int, log *zap.Logger) *Publisher {
	if buffer < 1 {
		buffer = 1
	}
	return &Publisher{
		url:    url,
		queue:  queue,
		events: make(chan LoginAttemptEvent, buffer),
		log:    log,
	}
}

// Publish enqueues ev.  It reports false when the event was dropped.
func (p *Publisher) Publish(ev LoginAttemptEvent) bool {
	select {
	case p.events <- ev:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Run connects to the broker and drains the buffer until ctx is cancelled.
// Connection failures are retried with exponential backoff up to 30s.
func (p *Publisher) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(p.url)
		if err != nil {
			p.log.Warn("audit-publisher: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = p.publishLoop(ctx, conn)
		_ = conn.Close()
		if err == nil {
			return
		}
		p.log.Warn("audit-publisher: publish loop ended; reconnecting", zap.Error(err))
	}
}

// publishLoop returns nil only when ctx is done.
func (p *Publisher) publishLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "queue declare")
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			return errors.Errorf("connection closed: %v", amqpErr)
		case ev := <-p.events:
			if err := p.publish(ctx, ch, ev); err != nil {
				p.log.Warn("audit-publisher: event lost", zap.String("username", ev.Username), zap.Error(err))
				return err
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ch *amqp.Channel, ev LoginAttemptEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(pctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // store on disk
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
