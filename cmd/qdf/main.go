package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sanonone/qdf/internal/scenario"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel string
	jsonLogs bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "qdf",
		Short:         "Run quantized density field scenarios",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&g.jsonLogs, "json-logs", false, "emit JSON log records")

	root.AddCommand(newRunCmd(g), newValidateCmd())
	return root
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		jsonOut     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a scenario file and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}

			cfg, err := scenario.LoadConfig(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := scenario.Run(ctx, cfg, logger)
			if err != nil {
				logger.Error("scenario failed", "error", err)
				return err
			}
			if err := printReport(cmd.OutOrStdout(), report, jsonOut); err != nil {
				return err
			}

			if metricsAddr == "" {
				return nil
			}
			return serveMetrics(ctx, metricsAddr, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the scenario YAML file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted (e.g. :9100)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate a scenario file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := scenario.LoadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (dimension %d, %d subdivisions, %d path queries)\n",
				cfg.Name, cfg.Dimension, len(cfg.Subdivide)+len(cfg.Refine), len(cfg.Paths))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the scenario YAML file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newLogger(w io.Writer, g *globalFlags) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if g.jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func printReport(w io.Writer, r *scenario.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(w, "field %s (%s)\n", r.Name, r.FieldID)
	fmt.Fprintf(w, "  dimension %d, %d spaces, %d leaves, %d edges\n", r.Dimension, r.Spaces, r.Leaves, r.Edges)
	for i, total := range r.Totals {
		fmt.Fprintf(w, "  root %d total state %g\n", i, total)
	}
	for _, p := range r.Paths {
		if p.Error != "" {
			fmt.Fprintf(w, "  path %s -> %s: %s\n", p.From, p.To, p.Error)
			continue
		}
		fmt.Fprintf(w, "  path %s -> %s: %d hops %v\n", p.From, p.To, p.Hops, p.Path)
	}
	return nil
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
