// Command plughost loads a directory of capability plugins and lists what
// they registered.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reglet-dev/native-host-sdk/capability"
	"github.com/reglet-dev/native-host-sdk/host"
	"github.com/reglet-dev/native-host-sdk/observability"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	exitFunc(code)
}

// cli runs the command. Extra host options are appended after the ones
// derived from flags.
func cli(ctx context.Context, args []string, stdout, stderr io.Writer, extra []host.Option) int {
	fs := flag.NewFlagSet("plughost", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "host config file (YAML)")
		pluginDir   = fs.String("plugins", host.DefaultPluginDir, "plugin directory")
		include     = fs.String("include", "", "comma-separated file name globs to load")
		lockfile    = fs.String("lockfile", "", "lockfile to record and verify plugins against")
		verify      = fs.Bool("verify", false, "reject libraries not pinned in the lockfile")
		logLevel    = fs.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat   = fs.String("log-format", "text", "log format: text or json")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address until interrupted")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := host.DefaultConfig()
	if *configPath != "" {
		loaded, err := host.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		cfg = loaded
	}

	// Flags given explicitly win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "plugins":
			cfg.PluginDir = *pluginDir
		case "include":
			cfg.Include = splitList(*include)
		case "lockfile":
			cfg.Lockfile = *lockfile
		case "verify":
			cfg.Verify = *verify
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})

	logger := host.NewLogger(cfg.Log.Level, cfg.Log.Format, stderr)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	opts := append([]host.Option{
		host.WithLogger(logger),
		host.WithObserver(metrics),
	}, extra...)
	h, err := host.New[capability.Variant](ctx, cfg, opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	code := 0
	if err := h.LoadPlugins(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		code = 1
	}
	report(stdout, h)

	if *metricsAddr != "" {
		if err := serveMetrics(ctx, *metricsAddr, reg, logger); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return code
}

func report(w io.Writer, h *host.Host[capability.Variant]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLUGIN\tAUTHOR\tSTATE\tPATH")
	for _, p := range h.Plugins() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID(), p.Metadata().Author(), p.State(), p.Path())
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n%d capabilities registered\n", h.Registry().Len())
	for i, v := range h.Registry().All() {
		fmt.Fprintf(w, "%3d  %-8s %s\n", i, capability.KindOf(v), capability.Describe(v))
	}
}

// serveMetrics blocks until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down metrics server")
	return srv.Shutdown(shutdownCtx)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
