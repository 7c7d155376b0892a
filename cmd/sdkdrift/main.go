// Command sdkdrift scans SDK source trees into method manifests, stores them
// as snapshots and reports drift between two manifests.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/config"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/graph"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/observability"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins/source/python"
)

const version = "0.1.0"

// exitError carries a specific process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	stdout, stderr io.Writer

	configPath string
	verbose    bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *plugins.Registry
	tracing  *observability.TracerProvider

	// openGraph connects to the configured graph database.
	openGraph func(ctx context.Context) (graph.Repository, error)
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{stdout: stdout, stderr: stderr}
	a.openGraph = a.openNeo4j
	return a
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr).execute(args)
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(args []string) int {
	stderr := a.stderr
	cmd := a.rootCmd()
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if a.tracing != nil {
		if serr := a.tracing.Shutdown(context.Background()); serr != nil && a.logger != nil {
			a.logger.Warn("tracing shutdown failed", "error", serr)
		}
	}
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(stderr, ee.msg)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sdkdrift",
		Short:         "Track the public method surface of SDKs over time",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file path (yaml, json or toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.scanCmd(),
		a.diffCmd(),
		a.snapshotCmd(),
		a.graphCmd(),
		a.languagesCmd(),
	)
	return root
}

// setup loads .env and configuration, then builds the logger, tracer and
// plugin registry.
func (a *app) setup(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(a.stderr, "Warning: %s\n", w)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(a.stderr)
	slog.SetDefault(a.logger)

	tcfg := observability.DefaultTracingConfig()
	tcfg.ServiceName = cfg.Tracing.ServiceName
	tcfg.ServiceVersion = version
	tcfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tcfg.SampleRate = cfg.Tracing.SampleRate
	tp, err := observability.InitTracing(ctx, tcfg)
	if err != nil {
		return err
	}
	a.tracing = tp

	a.registry = plugins.NewRegistry()
	a.registry.RegisterSource(python.New(
		python.WithExtension(cfg.Scan.Extension),
		python.WithTestPrefix(cfg.Scan.TestPrefix),
		python.WithModuleIDs(cfg.Scan.ModuleIDs),
		python.WithAsync(cfg.Scan.IncludeAsync),
		python.WithLogger(a.logger),
	))
	return nil
}

func (a *app) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported source languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range a.registry.Languages() {
				p, err := a.registry.Source(lang)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "  %-10s %v\n", lang, p.FileExtensions())
			}
			return nil
		},
	}
}
