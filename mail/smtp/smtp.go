package smtp

import "time"

// ImplicitTLSPort is the submission port that expects TLS from the first byte.
const ImplicitTLSPort = 465

// Config contains SMTP connection parameters. Username and Password may be
// left empty when credentials arrive with every request.
type Config struct {
	Host     string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int           `envconfig:"SMTP_PORT" default:"465"`           // 465 for implicit TLS, 587 for STARTTLS
	Username string        `envconfig:"SMTP_USER"`                         // username or email
	Password string        `envconfig:"SMTP_PASSWORD"`                     // password or app password
	From     string        `envconfig:"SMTP_FROM"`                         // default from address (optional)
	TLS      bool          `envconfig:"SMTP_TLS" default:"true"`           // STARTTLS on ports other than 465
	Implicit bool          `envconfig:"SMTP_IMPLICIT_TLS" default:"false"` // TLS from the first byte on any port
	Insecure bool          `envconfig:"SMTP_INSECURE" default:"false"`     // skip certificate verification
	Timeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"60s"`        // whole conversation, 0 disables
}

func (c Config) implicitTLS() bool {
	return c.Implicit || c.Port == ImplicitTLSPort
}
