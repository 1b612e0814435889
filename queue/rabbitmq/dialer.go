package rabbitmq

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrConnectionClosed = errors.New("connection is closed manually")

// Dialer owns the AMQP connection and reconnects it after a broker side
// close.
type Dialer struct {
	mx      sync.Mutex
	uri     string
	conn    *amqp.Connection
	options *DialerOptions
}

type DialerOptions struct {
	RetryPolicy RetryPolicy
	Logger      *slog.Logger
}

func NewDialer(uri string, options *DialerOptions) *Dialer {
	if options == nil {
		options = new(DialerOptions)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	options.Logger = options.Logger.WithGroup("rabbitmq")
	if options.RetryPolicy == nil {
		options.RetryPolicy = NewDefaultMaxInterval()
	}
	return &Dialer{uri: uri, options: options}
}

func (d *Dialer) Connect() error {
	d.mx.Lock()
	defer d.mx.Unlock()

	conn, err := amqp.DialConfig(d.uri, amqp.Config{Properties: amqp.Table{"connection_name": "bulkmail"}})
	if err != nil {
		return errors.Wrap(err, "failed to dial")
	}
	d.conn = conn
	go d.handleReconnect(conn.NotifyClose(make(chan *amqp.Error, 1)))
	d.options.Logger.Debug("connected")
	return nil
}

func (d *Dialer) Channel() (*amqp.Channel, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.conn == nil {
		return nil, ErrConnectionClosed
	}
	channel, err := d.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	return channel, nil
}

func (d *Dialer) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.conn == nil {
		return nil
	}
	conn := d.conn
	d.conn = nil
	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "failed to close RabbitMQ connection")
	}
	return nil
}

// handleReconnect waits for the connection to drop. A manual Close closes
// ch without an error and ends the loop.
func (d *Dialer) handleReconnect(ch chan *amqp.Error) {
	amqpErr, ok := <-ch
	if !ok {
		return
	}
	d.options.Logger.Warn("disconnected", "error", amqpErr.Error())

	for i := 0; ; i++ {
		err := d.Connect()
		if err == nil {
			return
		}
		wait, stop := d.options.RetryPolicy.TryNum(i)
		if stop {
			d.options.Logger.Error("giving up reconnecting", "error", err.Error())
			return
		}
		d.options.Logger.Error("failed to reconnect", "error", err.Error(), "retry_in", wait.String())
		time.Sleep(wait)
	}
}
