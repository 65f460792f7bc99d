package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/host"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/source"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string
	Tick  string
	Every time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve [example]",
		Short: "Serve an example machine over HTTP",
		Long: `Mount an example machine and serve it: GET / renders the page, GET /stream pushes
every redraw as a datastar patch, POST /events/{name} sends an event.

` + examplesHelp(),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "counter"
			if len(args) > 0 {
				name = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return runServe(ctx, opts, name)
		},
	}

	cmd.Flags().StringVarP(&opts.Addr, "addr", "a", "", "listen address, overrides the configuration")
	cmd.Flags().StringVar(&opts.Tick, "tick", "", "event to send periodically")
	cmd.Flags().DurationVar(&opts.Every, "every", time.Second, "interval between --tick events")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, name string) error {
	ex, err := lookup(name)
	if err != nil {
		return err
	}
	addr := opts.cfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	log := logger.Logger().With("example", name, "addr", addr)

	actorOpts := append(opts.cfg.ActorOptions(), beepboop.WithLogger(log))
	a := beepboop.NewActor(ex.machine(), actorOpts...)
	h := host.New(a, host.WithTitle(name), host.WithLogger(log))
	defer h.Close()
	if err := h.Mount(ctx, ex.props()); err != nil {
		return fmt.Errorf("mount %s: %w", name, err)
	}
	if opts.Tick != "" {
		if opts.Every <= 0 {
			return fmt.Errorf("--every must be positive, got %v", opts.Every)
		}
		ticker := source.Ticker(logger.ToContext(ctx, log), a, opts.Tick, opts.Every)
		defer ticker.Stop()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end with the serve context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Infow("serving")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down", "subscribers", h.Subscribers())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
