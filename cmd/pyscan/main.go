// Command pyscan prints the public API surface of a Python SDK tree as a JSON
// array of method records.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/config"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins/source/python"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/scan"
)

const usage = "Usage: pyscan <sdk_root>"

var errUsage = errors.New(usage)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes pyscan and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, usage)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "pyscan <sdk_root>",
		Short: "Extract the public method surface of a Python SDK",
		// Every argument is positional; extra arguments are ignored.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanRoot(cmd.Context(), args[0], stdout, stderr)
		},
	}
}

func scanRoot(ctx context.Context, root string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Default()
	logger := cfg.Log.NewLogger(stderr)

	plugin := python.New(
		python.WithExtension(cfg.Scan.Extension),
		python.WithTestPrefix(cfg.Scan.TestPrefix),
		python.WithModuleIDs(cfg.Scan.ModuleIDs),
		python.WithAsync(cfg.Scan.IncludeAsync),
		python.WithLogger(logger),
	)
	scanner := scan.New(plugin, scan.WithWarnings(stderr), scan.WithLogger(logger))

	res, err := scanner.Run(ctx, root)
	if err != nil {
		if !errors.Is(err, scan.ErrNotDirectory) {
			return err
		}
		// A missing root scans like an empty tree.
		logger.Debug("scan root not found", "root", root, slog.Any("error", err))
	}
	return manifest.Write(stdout, res.Records, cfg.Output.Pretty)
}
