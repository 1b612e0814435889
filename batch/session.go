package batch

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/attachment"
	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/recipient"
)

const (
	DefaultReplyTo     = "info@edgei.org"
	DefaultDisplayName = "EDGEI 2026"
)

var (
	ErrNotConfigured    = errors.New("please configure settings first")
	ErrDomainNotAllowed = errors.New("email address is not in the allowed domain")
	ErrBatchRunning     = errors.New("a batch is already sending")
)

// Credentials are the sending account of a session. They are handed to the
// relay with every send and never stored server side.
type Credentials struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"displayName"`
	ReplyTo     string `yaml:"replyTo"`
}

// Normalize trims every field and fills the reply-to default.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	c.ReplyTo = strings.TrimSpace(c.ReplyTo)
	if c.ReplyTo == "" {
		c.ReplyTo = DefaultReplyTo
	}
	return c
}

// Validate requires an email and a password. A non-empty allowedDomain
// ("@kiit.ac.in") restricts the sending address.
func (c Credentials) Validate(allowedDomain string) error {
	if c.Email == "" || c.Password == "" {
		return ErrNotConfigured
	}
	if allowedDomain != "" && !strings.HasSuffix(strings.ToLower(c.Email), strings.ToLower(allowedDomain)) {
		return errors.Wrapf(ErrDomainNotAllowed, "email must be %s", allowedDomain)
	}
	return nil
}

// SenderFactory builds the send-one collaborator for a set of credentials.
type SenderFactory func(c Credentials) Sender

type SessionConfig struct {
	AllowedDomain string
	Mode          compose.Mode
	Assets        compose.Assets
	Ceiling       int64
}

// Session is one operator's composing state: credentials, authoring
// surfaces, attachments and the loaded recipients. Reset tears it down.
type Session struct {
	mx         sync.Mutex
	cfg        SessionConfig
	newSender  SenderFactory
	creds      *Credentials
	recipients *recipient.Set
	sending    bool

	Editor      *compose.Editor
	Attachments *attachment.Accumulator
}

func NewSession(cfg SessionConfig, newSender SenderFactory) *Session {
	ceiling := cfg.Ceiling
	if ceiling <= 0 {
		ceiling = attachment.MaxTotalSize
	}
	return &Session{
		cfg:         cfg,
		newSender:   newSender,
		Editor:      compose.NewEditor(cfg.Mode, cfg.Assets),
		Attachments: attachment.NewAccumulatorWithCeiling(ceiling),
	}
}

// Configure validates and stores the sending credentials.
func (s *Session) Configure(c Credentials) error {
	c = c.Normalize()
	if err := c.Validate(s.cfg.AllowedDomain); err != nil {
		return err
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	s.creds = &c
	return nil
}

func (s *Session) Credentials() (Credentials, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.creds == nil {
		return Credentials{}, false
	}
	return *s.creds, true
}

// LoadRecipients replaces the recipient set. It is refused while sending.
func (s *Session) LoadRecipients(set *recipient.Set) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.sending {
		return ErrBatchRunning
	}
	s.recipients = set
	return nil
}

func (s *Session) Recipients() *recipient.Set {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.recipients
}

func (s *Session) IsSending() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.sending
}

// Preview renders the current body against the first recipient, or the
// sample values when no recipients are loaded.
func (s *Session) Preview() (string, error) {
	body, err := s.Editor.Body()
	if err != nil {
		return "", err
	}
	set := s.Recipients()
	if set.Len() == 0 {
		return compose.Preview(body, nil), nil
	}
	return compose.Preview(body, set.Row(0)), nil
}

// Send runs a batch with the session's state. Attachments stay locked until
// the batch returns.
func (s *Session) Send(ctx context.Context, subject string, opts Options, obs Observer) (*Summary, error) {
	job, creds, err := s.begin(subject, opts)
	if err != nil {
		return nil, err
	}
	defer s.end()

	return Run(ctx, job, s.newSender(creds), obs)
}

func (s *Session) begin(subject string, opts Options) (Job, Credentials, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.sending {
		return Job{}, Credentials{}, ErrBatchRunning
	}
	if s.creds == nil {
		return Job{}, Credentials{}, ErrNotConfigured
	}

	body, err := s.Editor.Body()
	if err != nil {
		return Job{}, Credentials{}, err
	}
	job := Job{
		Template:   body,
		Subject:    subject,
		Recipients: s.recipients,
		Options:    opts,
	}
	if _, err := job.Validate(); err != nil {
		return Job{}, Credentials{}, err
	}

	snapshot, err := s.Attachments.Lock()
	if err != nil {
		return Job{}, Credentials{}, err
	}
	job.Attachments = snapshot
	s.sending = true
	return job, *s.creds, nil
}

func (s *Session) end() {
	s.Attachments.Unlock()
	s.mx.Lock()
	s.sending = false
	s.mx.Unlock()
}

// Reset clears credentials, surfaces, attachments and recipients.
func (s *Session) Reset() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.sending {
		return ErrBatchRunning
	}
	s.creds = nil
	s.recipients = nil
	s.Editor.Reset()
	return s.Attachments.Clear()
}
