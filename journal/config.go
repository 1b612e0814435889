package journal

import "time"

type Provider string

const (
	ProviderRedis Provider = "redis"
	ProviderNoop  Provider = "noop"
)

type Config struct {
	Provider Provider `envconfig:"JOURNAL_PROVIDER" default:"noop"`
	// Key namespaces the journal, e.g. per operator.
	Key               string        `envconfig:"JOURNAL_KEY" default:"bulkmail:journal"`
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	RedisMaxRetries   int           `envconfig:"REDIS_MAX_RETRIES" default:"3"`
	RedisDialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	RedisWriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	RedisPoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"4"`
}
