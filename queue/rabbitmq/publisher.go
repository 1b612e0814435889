package rabbitmq

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/queue"
	"github.com/manavc-13/KIIT-Mailer/queue/encoders"
)

var _ queue.Publisher = (*Publisher)(nil)

type DeliveryMode uint8

const (
	Transient  = DeliveryMode(amqp.Transient)
	Persistent = DeliveryMode(amqp.Persistent)
)

type PublisherConfig struct {
	// Exchange is declared as a durable topic exchange on first use.
	Exchange     string
	DeliveryMode DeliveryMode
	Encoder      queue.Encoder
	MessageTTL   time.Duration // precision to milliseconds
}

type Publisher struct {
	mx      sync.Mutex
	dialer  *Dialer
	cfg     PublisherConfig
	channel *amqp.Channel
	closed  <-chan *amqp.Error
}

func NewPublisher(dialer *Dialer, cfg PublisherConfig) *Publisher {
	if cfg.Encoder == nil {
		cfg.Encoder = encoders.JSON{}
	}
	if cfg.DeliveryMode == 0 {
		cfg.DeliveryMode = Persistent
	}

	closed := make(chan *amqp.Error, 1)
	close(closed)
	return &Publisher{dialer: dialer, cfg: cfg, closed: closed}
}

// Connect dials cfg.URL and returns a publisher on cfg.Exchange. Close the
// publisher to drop the connection.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	dialer := NewDialer(cfg.URL, &DialerOptions{Logger: logger.FromContext(ctx)})
	if err := dialer.Connect(); err != nil {
		return nil, err
	}
	return NewPublisher(dialer, PublisherConfig{Exchange: cfg.Exchange, MessageTTL: cfg.MessageTTL}), nil
}

// Publish sends messages in order and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, messages ...queue.Message) error {
	channel, err := p.ensureChannel()
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if err := p.publish(ctx, channel, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mx.Lock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	p.mx.Unlock()
	return p.dialer.Close()
}

func (p *Publisher) ensureChannel() (*amqp.Channel, error) {
	p.mx.Lock()
	defer p.mx.Unlock()

	select {
	case <-p.closed:
	default:
		return p.channel, nil
	}

	channel, err := p.dialer.Channel()
	if err != nil {
		return nil, err
	}
	if p.cfg.Exchange != "" {
		if err := channel.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = channel.Close()
			return nil, errors.Wrapf(err, "failed to declare exchange %s", p.cfg.Exchange)
		}
	}
	p.channel = channel
	p.closed = channel.NotifyClose(make(chan *amqp.Error, 1))
	return channel, nil
}

func (p *Publisher) publish(ctx context.Context, channel *amqp.Channel, msg queue.Message) error {
	ctx, span := tracer.Start(ctx, "RabbitMQ.Publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	body, err := msg.EncodeValue(p.cfg.Encoder)
	if err != nil {
		return err
	}

	amqpMsg := amqp.Publishing{
		ContentType:  p.cfg.Encoder.ContentType(),
		MessageId:    uuid.NewString(),
		DeliveryMode: uint8(p.cfg.DeliveryMode),
		Timestamp:    time.Now(),
		Body:         body,
		Headers:      amqp.Table{},
	}
	for k, v := range msg.Headers {
		amqpMsg.Headers[k] = v
	}
	if ttl := msg.TTL; ttl > 0 {
		amqpMsg.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
	} else if p.cfg.MessageTTL > 0 {
		amqpMsg.Expiration = strconv.FormatInt(p.cfg.MessageTTL.Milliseconds(), 10)
	}
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier(amqpMsg.Headers))

	span.SetAttributes(
		attribute.String("id", amqpMsg.MessageId),
		attribute.String("exchange", p.cfg.Exchange),
		attribute.String("key", msg.Topic),
		attribute.Int("body_size", len(body)),
	)

	err = channel.PublishWithContext(ctx, p.cfg.Exchange, msg.Topic, false, false, amqpMsg)
	if err != nil {
		err = errors.Wrapf(err, "failed to publish to %s", msg.Topic)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
