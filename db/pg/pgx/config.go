package pgx

import (
	"fmt"
	"net/url"
)

type Config struct {
	User            string `envconfig:"POSTGRES_USER" required:"true"`
	Password        string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Host            string `envconfig:"POSTGRES_HOST" required:"true"`
	Port            int    `envconfig:"POSTGRES_PORT" default:"5432"`
	Name            string `envconfig:"POSTGRES_DB_NAME" required:"true"`
	CertPath        string `envconfig:"POSTGRES_SSL_CERT_PATH"`
	MaxOpenConns    int32  `envconfig:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"10"`
	MaxConnLifeTime int32  `envconfig:"POSTGRES_MAX_CONNECTIONS_LIFETIME" default:"300"`
	MaxConnIdleTime int32  `envconfig:"POSTGRES_MAX_CONNECTIONS_IDLE_TIME" default:"60"`
	// TraceLogLevel is one of trace, debug, info, warn, error, none.
	TraceLogLevel   string `envconfig:"POSTGRES_TRACE_LOG_LEVEL" default:"error"`
	MigrationsTable string `envconfig:"POSTGRES_MIGRATIONS_TABLE" default:"bulkmail_migrations"`
}

// URL returns the connection string. Without a certificate TLS is disabled.
func (c *Config) URL() *url.URL {
	q := url.Values{"timezone": []string{"utc"}}
	if c.CertPath != "" {
		q.Set("sslmode", "verify-full")
		q.Set("sslrootcert", c.CertPath)
	} else {
		q.Set("sslmode", "disable")
	}

	host := c.Host
	if c.Port != 0 && c.Port != 5432 {
		host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     host,
		Path:     c.Name,
		RawQuery: q.Encode(),
	}
}
