package cli

import (
	"github.com/spf13/cobra"

	"github.com/manavc-13/KIIT-Mailer/httpserver/std"
	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/metrics"
	"github.com/manavc-13/KIIT-Mailer/tracing"
	"github.com/manavc-13/KIIT-Mailer/tracing/jaeger"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mail relay",
		Long: `Serve runs the HTTP relay: /api/send-mail, drafts and the activity logs.
Everything is configured from the environment (RELAY_*, SMTP_*, SES_*,
RESEND_*, STORE_PROVIDER, POSTGRES_*, METRICS_*, TRACING_*, WEBSERVER_*).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	var mCfg metrics.Config
	if err := opts.load(&mCfg); err != nil {
		return err
	}
	m, err := metrics.InitDefault(mCfg)
	if err != nil {
		return err
	}
	defer m.Close()

	var tCfg jaeger.Config
	if err := opts.load(&tCfg); err != nil {
		return err
	}
	if tCfg.EndPoint != "" {
		tp, err := tracing.Init(jaeger.NewProviderBuilder(tCfg))
		if err != nil {
			log.WarnContext(ctx, "tracing disabled", "error", err.Error())
		}
		defer tp.Close()
	}

	st, stCloser, err := openStore(ctx, opts.load)
	if err != nil {
		return err
	}
	defer stCloser.Close()

	r, sender, err := newRelay(ctx, opts.load, st)
	if err != nil {
		return err
	}
	defer sender.Close()

	var srvCfg std.Config
	if err := opts.load(&srvCfg); err != nil {
		return err
	}
	srv := std.NewDefault(srvCfg, r.Routes())
	addr, err := srv.Listen()
	if err != nil {
		return err
	}
	srv.Run()
	log.InfoContext(ctx, "relay running", "url", "http://"+addr.String())

	<-ctx.Done()
	log.InfoContext(ctx, "shutting down")
	return srv.Close()
}
