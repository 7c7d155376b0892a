package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/graph"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/graph/neo4j"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
)

// graphPrefix marks a diff side that is loaded from the graph database.
const graphPrefix = "graph:"

var errGraphNotConfigured = errors.New("graph.uri is not configured")

func (a *app) openNeo4j(ctx context.Context) (graph.Repository, error) {
	g := a.cfg.Graph
	if g.URI == "" {
		return nil, errGraphNotConfigured
	}
	return neo4j.NewNeo4j(ctx, g.URI, g.Username, g.Password)
}

func (a *app) graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Query manifests exported to the graph database",
	}

	methodsCmd := &cobra.Command{
		Use:   "methods <namespace>",
		Short: "List the method ids a namespace exposes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := a.openGraph(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			ids, err := repo.QueryMethods(ctx, args[0])
			if err != nil {
				return fmt.Errorf("query methods: %w", err)
			}
			if len(ids) == 0 {
				fmt.Fprintf(a.stdout, "No methods for %s.\n", args[0])
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(a.stdout, id)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [module]",
		Short: "Print the manifest stored for a module, or for every module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module := ""
			if len(args) == 1 {
				module = args[0]
			}
			records, err := a.loadGraph(cmd.Context(), module)
			if err != nil {
				return err
			}
			return manifest.Write(a.stdout, records, a.cfg.Output.Pretty)
		},
	}

	cmd.AddCommand(methodsCmd, exportCmd)
	return cmd
}

func (a *app) exportGraph(ctx context.Context, records []*ir.MethodRecord) error {
	repo, err := a.openGraph(ctx)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)

	if err := repo.StoreManifest(ctx, records); err != nil {
		return err
	}
	a.logger.Info("graph export complete", "methods", len(records))
	return nil
}

func (a *app) loadGraph(ctx context.Context, module string) ([]*ir.MethodRecord, error) {
	repo, err := a.openGraph(ctx)
	if err != nil {
		return nil, err
	}
	defer repo.Close(ctx)

	records, err := repo.LoadManifest(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("load manifest from graph: %w", err)
	}
	a.logger.Debug("graph manifest loaded", "module", module, "methods", len(records))
	return records, nil
}

// graphModule reports whether ref names a graph side and returns its module.
func graphModule(ref string) (string, bool) {
	if !strings.HasPrefix(ref, graphPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, graphPrefix), true
}
