package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func archiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Write the current state to the blob store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blobs, err := a.blobStore(cmd.Context())
			if err != nil {
				return err
			}
			info, err := a.svc.Archive(cmd.Context(), blobs, a.cfg.Blob.Prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.Key)
			return nil
		},
	}
}

func archivesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archives",
		Short: "List stored archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blobs, err := a.blobStore(cmd.Context())
			if err != nil {
				return err
			}
			infos, err := blobs.List(cmd.Context(), a.cfg.Blob.Prefix)
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", info.Key, info.Size)
			}
			return nil
		},
	}
}

func restoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key>",
		Short: "Replace the current state with a stored archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.requireCaller()
			if err != nil {
				return err
			}
			blobs, err := a.blobStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.svc.Restore(cmd.Context(), caller, blobs, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", args[0])
			return nil
		},
	}
}
