package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corsica/corsica"
	"github.com/corsica/corsica/metrics"
	"github.com/corsica/corsica/policyfile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	configPath string
	addr       string
	logLevel   string
	pretty     bool
	watch      bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resources with per-resource CORS policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "corsica.yaml", "path to the policy file")
	flags.StringVar(&opts.addr, "addr", ":8080", "address to listen on")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-friendly log output")
	flags.BoolVar(&opts.watch, "watch", true, "hot-reload policies when the policy file changes")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	logger := newLogger(opts.logLevel, opts.pretty)

	f, err := policyfile.Load(opts.configPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	decisions := metrics.NewDecisions(reg)

	// The route set is fixed at startup; hot reload only swaps the
	// policies of already-mounted resources.
	middlewares := make(map[string]*corsica.Middleware)
	mux := http.NewServeMux()
	for path, cfg := range f.Configs() {
		mw, err := corsica.NewMiddleware(*cfg)
		if err != nil {
			return fmt.Errorf("resource %s: %w", path, err)
		}
		middlewares[path] = mw
		mux.Handle(path, decisions.Observe(mw.Wrap(resourceHandler(path))))
		logger.Info().Str("resource", path).Msg("resource mounted")
	}
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if opts.watch {
		watcher, err := policyfile.Watch(opts.configPath, logger, func(nf *policyfile.File) {
			reconfigure(logger, middlewares, nf)
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           requestLogger(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", opts.addr).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reconfigure applies the policies of nf to the mounted middleware.
// A resource whose new policy is invalid keeps its previous one; a
// resource absent from nf becomes a passthrough.
func reconfigure(logger zerolog.Logger, middlewares map[string]*corsica.Middleware, nf *policyfile.File) {
	for path, mw := range middlewares {
		cfg := nf.Config(path)
		if err := mw.Reconfigure(cfg); err != nil {
			logger.Warn().
				Err(err).
				Str("resource", path).
				Msg("invalid policy; resource keeps its previous policy")
			continue
		}
		if cfg == nil {
			logger.Warn().
				Str("resource", path).
				Msg("resource no longer in policy file; serving without CORS processing")
		}
	}
	for path := range nf.Resources {
		if _, mounted := middlewares[path]; !mounted {
			logger.Warn().
				Str("resource", path).
				Msg("new resource in policy file; restart required to mount it")
		}
	}
}

func resourceHandler(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "corsicad: "+path+"\n")
	})
}
