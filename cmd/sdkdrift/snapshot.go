package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/snapshot"
)

func (a *app) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored manifest snapshots",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			summaries := store.List()
			if len(summaries) == 0 {
				fmt.Fprintln(a.stdout, "No snapshots.")
				return nil
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTAG\tCREATED\tMETHODS\tWARNINGS\tROOT")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					s.ID, s.Tag, s.CreatedAt.Format(time.RFC3339), s.MethodCount, s.Warnings, s.Root)
			}
			return tw.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Show snapshot metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, _, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, string(data))
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Print a snapshot's manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, store, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			data, err := store.LoadManifestBytes(snap)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	tagCmd := &cobra.Command{
		Use:   "tag <ref> <tag>",
		Short: "Tag a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, store, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := store.Tag(snap.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Tagged %s as %s\n", snap.ID, args[1])
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, store, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(snap.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted %s\n", snap.ID)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, exportCmd, tagCmd, deleteCmd)
	return cmd
}

func (a *app) store() (*snapshot.Store, error) {
	return snapshot.NewStore(a.cfg.Snapshot.Dir)
}

func (a *app) resolve(ref string) (*snapshot.Snapshot, *snapshot.Store, error) {
	store, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	snap, err := store.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	return snap, store, nil
}
