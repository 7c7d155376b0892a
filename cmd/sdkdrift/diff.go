package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/qualitygate"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/report"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/snapshot"
)

// exitGateFailed is returned when an error-severity drift gate fails.
const exitGateFailed = 2

type diffOptions struct {
	format      string
	noColor     bool
	noGates     bool
	maxRemoved  int
	maxBreaking int
	minScore    float64
}

func (a *app) diffCmd() *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two manifests and evaluate drift gates",
		Long: "Compare two manifests. Each side is a manifest file path, a snapshot\n" +
			"reference (id, tag or unique id prefix) or graph:<module> for a manifest\n" +
			"stored in the graph database. Exits 2 when a drift gate fails.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gates := a.gateConfig()
			if cmd.Flags().Changed("max-removed") {
				gates.MaxRemoved = opts.maxRemoved
			}
			if cmd.Flags().Changed("max-breaking") {
				gates.MaxBreaking = opts.maxBreaking
			}
			if cmd.Flags().Changed("min-score") {
				gates.MinScore = opts.minScore
			}
			return a.runDiff(cmd.Context(), args[0], args[1], gates, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "terminal", "Report format: terminal, markdown or json")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.noGates, "no-gates", false, "Report drift without evaluating gates")
	cmd.Flags().IntVar(&opts.maxRemoved, "max-removed", 0, "Maximum removed methods (negative disables)")
	cmd.Flags().IntVar(&opts.maxBreaking, "max-breaking", 0, "Maximum breaking changes (negative disables)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Minimum drift score (0 disables)")
	return cmd
}

func (a *app) gateConfig() *qualitygate.GateConfig {
	gc := qualitygate.DefaultConfig()
	gc.MaxRemoved = a.cfg.Gates.MaxRemoved
	gc.MaxBreaking = a.cfg.Gates.MaxBreaking
	gc.MinScore = a.cfg.Gates.MinScore
	return gc
}

func (a *app) runDiff(ctx context.Context, oldRef, newRef string, gates *qualitygate.GateConfig, opts diffOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	oldRecords, err := a.loadSide(ctx, oldRef)
	if err != nil {
		return err
	}
	newRecords, err := a.loadSide(ctx, newRef)
	if err != nil {
		return err
	}

	d := snapshot.Diff(oldRecords, newRecords)
	d.OldRef, d.NewRef = oldRef, newRef
	a.logger.Debug("diff computed",
		"old", oldRef,
		"new", newRef,
		"findings", len(d.Findings),
		"score", d.Score)

	r := &report.Report{Diff: d}
	if !opts.noGates {
		r.Gates = qualitygate.BuildPipeline(gates).Run(&qualitygate.EvalContext{Diff: d})
	}

	if err := report.Render(a.stdout, r, format, report.Options{Color: !opts.noColor && !color.NoColor}); err != nil {
		return err
	}

	if r.Gates != nil && r.Gates.Failed() {
		return &exitError{code: exitGateFailed, msg: "drift gates failed"}
	}
	return nil
}

// loadSide reads a "graph:<module>" side from the graph database, otherwise
// a manifest file, falling back to a snapshot reference when no such file
// exists.
func (a *app) loadSide(ctx context.Context, ref string) ([]*ir.MethodRecord, error) {
	if module, ok := graphModule(ref); ok {
		return a.loadGraph(ctx, module)
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		records, err := manifest.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", ref, err)
		}
		return records, nil
	}

	store, err := snapshot.NewStore(a.cfg.Snapshot.Dir)
	if err != nil {
		return nil, err
	}
	snap, err := store.Resolve(ref)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("%s is neither a manifest file nor a snapshot: %w", ref, err)
		}
		return nil, err
	}
	return store.LoadManifest(snap)
}
