package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/scan"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/snapshot"
)

type scanOptions struct {
	language    string
	output      string
	pretty      bool
	summary     bool
	summaryJSON bool
	snapshot    bool
	tag         string
	graph       bool
}

func (a *app) scanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <sdk_root>",
		Short: "Scan an SDK tree and print its method manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("pretty") {
				a.cfg.Output.Pretty = opts.pretty
			}
			return a.runScan(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.language, "language", "python", "Source language")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the manifest to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the manifest")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a scan summary to stderr")
	cmd.Flags().BoolVar(&opts.summaryJSON, "summary-json", false, "Print the scan summary as JSON to stderr")
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "Store the manifest as a snapshot")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Tag for the stored snapshot (implies --snapshot)")
	cmd.Flags().BoolVar(&opts.graph, "graph", false, "Export the manifest to the configured Neo4j graph")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, root string, opts scanOptions) error {
	ctx := cmd.Context()

	plugin, err := a.registry.Source(opts.language)
	if err != nil {
		return err
	}
	scanner := scan.New(plugin, scan.WithWarnings(a.stderr), scan.WithLogger(a.logger))

	res, err := scanner.Run(ctx, root)
	if err != nil {
		if !errors.Is(err, scan.ErrNotDirectory) {
			return err
		}
		a.logger.Debug("scan root not found", "root", root, "error", err)
	}

	data, err := manifest.Encode(res.Records, a.cfg.Output.Pretty)
	if err != nil {
		return err
	}
	if err := a.writeManifest(opts.output, data); err != nil {
		return err
	}

	if opts.summaryJSON {
		js, err := res.Metrics.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, string(js))
	} else if opts.summary {
		res.Metrics.PrintSummary(a.stderr)
	}

	if opts.snapshot || opts.tag != "" {
		if err := a.saveSnapshot(res, plugin.Language(), data, opts.tag); err != nil {
			return err
		}
	}

	if opts.graph {
		// The manifest is already written; a failed export only warns.
		if err := a.exportGraph(ctx, res.Records); err != nil {
			fmt.Fprintf(a.stderr, "Warning: graph export failed: %v\n", err)
		}
	}
	return nil
}

func (a *app) writeManifest(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (a *app) saveSnapshot(res *scan.Result, language string, data []byte, tag string) error {
	store, err := snapshot.NewStore(a.cfg.Snapshot.Dir)
	if err != nil {
		return err
	}
	snap := snapshot.NewSnapshot(snapshot.ScanInfo{
		Language: language,
		Root:     res.Root,
		Files:    len(res.Files),
		Warnings: res.Warnings(),
	}, data, len(res.Records))
	snap.Tag = tag

	if err := store.Save(snap, data); err != nil {
		return err
	}
	a.logger.Info("snapshot saved", "id", snap.ID, "tag", tag, "methods", snap.MethodCount)
	fmt.Fprintf(a.stderr, "Snapshot %s saved\n", snap.ID)
	return nil
}
