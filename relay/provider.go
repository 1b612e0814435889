package relay

import (
	"context"

	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/manavc-13/KIIT-Mailer/mail/noop"
	"github.com/manavc-13/KIIT-Mailer/mail/resend"
	"github.com/manavc-13/KIIT-Mailer/mail/ses"
	"github.com/manavc-13/KIIT-Mailer/mail/smtp"
)

// ConfigLoader fills a provider config struct, usually env.InitConfig.
type ConfigLoader func(cfg any) error

// NewSender builds the mail provider p. Only the selected provider's
// configuration is loaded.
func NewSender(ctx context.Context, p Provider, load ConfigLoader) (mail.Sender, error) {
	switch p {
	case ProviderSMTP, "":
		var cfg smtp.Config
		if err := load(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to load smtp config")
		}
		return smtp.NewSender(cfg, nil), nil
	case ProviderSES:
		var cfg ses.Config
		if err := load(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to load ses config")
		}
		sender, err := ses.NewDefault(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case ProviderResend:
		var cfg resend.Config
		if err := load(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to load resend config")
		}
		return resend.NewDefault(cfg), nil
	case ProviderNoop:
		return noop.NewSender(), nil
	default:
		return nil, errors.Errorf("unknown relay provider: %s", p)
	}
}
