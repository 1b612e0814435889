package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/manavc-13/KIIT-Mailer/attachment"
	"github.com/manavc-13/KIIT-Mailer/batch"
	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/journal"
	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/recipient"
	"github.com/manavc-13/KIIT-Mailer/relay"
	"github.com/manavc-13/KIIT-Mailer/storage"
)

type sendConfig struct {
	Password      string `envconfig:"BULKMAIL_PASSWORD"`
	AllowedDomain string `envconfig:"BULKMAIL_ALLOWED_DOMAIN" default:"@kiit.ac.in"`
}

// campaignFlags are the flags shared by send and preview.
type campaignFlags struct {
	path      string
	overrides Campaign
}

func (f *campaignFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.path, "file", "f", "", "campaign YAML file")
	fs.StringVar(&f.overrides.Subject, "subject", "", "email subject")
	fs.StringVar(&f.overrides.Mode, "mode", "", "editor mode: html or rich")
	fs.StringVar(&f.overrides.BodyFile, "body-file", "", "template file")
	fs.StringVar(&f.overrides.Recipients, "recipients", "", "recipient CSV file")
	fs.StringSliceVar(&f.overrides.Attachments, "attach", nil, "attachment path or s3://bucket/key, repeatable")
}

func (f *campaignFlags) load() (Campaign, error) {
	return LoadCampaign(f.path, f.overrides)
}

func newSendCommand(opts *rootOptions) *cobra.Command {
	flags := &campaignFlags{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one email per recipient row",
		Long: `Send runs a batch strictly one row at a time. Rows without an email are
skipped, failed rows are reported and the batch carries on. Ctrl+C stops the
batch before the next row.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, opts, flags)
		},
	}
	flags.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&flags.overrides.Relay, "relay", "", "relay base URL, empty sends in process")
	fs.StringVar(&flags.overrides.Credentials.Email, "email", "", "sending account")
	fs.StringVar(&flags.overrides.Credentials.DisplayName, "display-name", "", "From display name")
	fs.StringVar(&flags.overrides.Credentials.ReplyTo, "reply-to", "", "Reply-To address")
	fs.BoolVar(&flags.overrides.SubstituteSubject, "substitute-subject", false, "fill placeholders in the subject too")
	fs.DurationVar(&flags.overrides.SendTimeout, "send-timeout", 0, "bound for a single send, 0 waits forever")
	return cmd
}

func runSend(cmd *cobra.Command, opts *rootOptions, flags *campaignFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	c, err := flags.load()
	if err != nil {
		return err
	}
	var cfg sendConfig
	if err := opts.load(&cfg); err != nil {
		return err
	}
	if c.Credentials.Password == "" {
		c.Credentials.Password = cfg.Password
	}

	var factory batch.SenderFactory
	if c.Relay != "" {
		// no client timeout: a slow relay stalls the batch unless --send-timeout is set
		factory = relay.ClientFactory(c.Relay, &http.Client{})
	} else {
		r, sender, err := newRelay(ctx, opts.load, nil)
		if err != nil {
			return err
		}
		defer sender.Close()
		factory = relay.DirectFactory(r)
	}

	s, template, err := newSession(ctx, opts, c, cfg.AllowedDomain, factory)
	if err != nil {
		return err
	}
	if err := s.Configure(c.Credentials); err != nil {
		return err
	}

	j, err := openJournal(ctx, opts.load)
	if err != nil {
		return err
	}
	defer j.Close()
	pub, pubCloser, err := openPublisher(ctx, opts.load)
	if err != nil {
		return err
	}
	defer pubCloser.Close()

	obs := batch.Observers{
		batch.LogObserver{},
		journal.NewObserver(j),
		batch.NewEventObserver(pub),
		batch.ProgressFunc(func(current, total int) {
			fmt.Fprintln(out, progressLine(current, total))
		}),
	}
	logger.FromContext(ctx).DebugContext(ctx, "template ready", "placeholders", compose.Placeholders(template))

	summary, err := s.Send(ctx, c.Subject, c.Options(), obs)
	if summary != nil {
		printSummary(out, *summary)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errors.Errorf("%d of %d sends failed", summary.Failed, summary.Attempted)
	}
	return nil
}

// newSession loads the template, recipients and attachments of c into a
// fresh session. Recipients are optional so preview can run without them.
func newSession(ctx context.Context, opts *rootOptions, c Campaign, allowedDomain string, factory batch.SenderFactory) (*batch.Session, string, error) {
	mode, err := compose.ParseMode(c.Mode)
	if err != nil {
		return nil, "", err
	}
	assets := c.Assets
	if err := mergo.Merge(&assets, compose.DefaultAssets()); err != nil {
		return nil, "", errors.Wrap(err, "failed to apply default assets")
	}

	s := batch.NewSession(batch.SessionConfig{AllowedDomain: allowedDomain, Mode: mode, Assets: assets}, factory)

	template, err := c.Template()
	if err != nil {
		return nil, "", err
	}
	s.Editor.Load(template)

	if c.Recipients != "" {
		set, err := recipient.ParseFile(c.Recipients)
		if err != nil {
			return nil, "", err
		}
		if err := s.LoadRecipients(set); err != nil {
			return nil, "", err
		}
		if missing := compose.Unmatched(template, set.Columns()); len(missing) > 0 {
			logger.FromContext(ctx).WarnContext(ctx, "placeholders without a matching column will be sent literally", "placeholders", missing)
		}
	}

	if err := addAttachments(ctx, opts.load, s.Attachments, c.Attachments); err != nil {
		return nil, "", err
	}
	return s, template, nil
}

func addAttachments(ctx context.Context, load relay.ConfigLoader, acc *attachment.Accumulator, srcs []string) error {
	var objects storage.Storage
	defer func() {
		if objects != nil {
			_ = objects.Close()
		}
	}()

	items := make([]attachment.Attachment, 0, len(srcs))
	for _, src := range srcs {
		if storage.IsRef(src) && objects == nil {
			var err error
			if objects, err = openObjectStore(load); err != nil {
				return err
			}
		}
		var getter storage.Getter
		if objects != nil {
			getter = objects
		}
		a, err := attachment.Load(ctx, getter, src)
		if err != nil {
			return err
		}
		items = append(items, a)
	}

	res, err := acc.Add(items...)
	if err != nil {
		return err
	}
	for _, a := range res.Skipped {
		logger.FromContext(ctx).WarnContext(ctx, "attachment skipped, total size would exceed the limit",
			"file", a.Filename, "size", a.Size, "limit", acc.Ceiling())
	}
	return nil
}

func progressLine(current, total int) string {
	return fmt.Sprintf("%d / %d (%d%%)", current, total, batch.Percent(current, total))
}

func printSummary(w io.Writer, s batch.Summary) {
	fmt.Fprintln(w, journal.FinishedMessage(s))
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d rows without an email\n", s.Skipped)
	}
	for _, f := range s.Failures() {
		fmt.Fprintf(w, "  row %d %s: %s\n", f.Index, f.Email, f.Error)
	}
}
