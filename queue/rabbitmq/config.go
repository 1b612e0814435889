// Package rabbitmq publishes batch events to a RabbitMQ topic exchange.
package rabbitmq

import "time"

type Config struct {
	URL        string        `envconfig:"RABBITMQ_URL" required:"true"`
	Exchange   string        `envconfig:"RABBITMQ_EXCHANGE" default:"bulkmail.events"`
	MessageTTL time.Duration `envconfig:"RABBITMQ_MESSAGE_TTL" default:"24h"`
}
