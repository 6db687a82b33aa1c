package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/memberbridge/internal/config"
	"github.com/roach88/memberbridge/internal/httpapi"
	"github.com/roach88/memberbridge/internal/metrics"
	"github.com/roach88/memberbridge/internal/migrate"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the member registry HTTP server",
		Long: `Start the HTTP server over both stores with the migration strategy
from configuration. Shuts down gracefully on SIGINT/SIGTERM, draining
in-flight requests and comparison work.

Example:
  memberbridge serve --config config.yaml
  memberbridge serve --config config.yaml --addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	rel, doc, closeStores, err := openStores(cfg, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open stores", err)
	}
	defer closeStores()

	reg := prometheus.NewRegistry()
	orc := migrate.New(rel, doc, cfg.Strategy(),
		migrate.WithLogger(log),
		migrate.WithMetrics(metrics.New(reg)),
	)

	addr := cfg.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(orc, httpapi.Options{Logger: log, Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	st := orc.Strategy()
	log.Info().
		Str("addr", addr).
		Bool("dual_write", st.DualWrite).
		Str("read_source", string(st.ReadSource)).
		Msg("server started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}

	// Let in-flight comparisons finish before the stores close.
	orc.Flush()
	return nil
}
