package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the full remote collection into the local replica",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiFlag == "" {
				return fmt.Errorf("--api required for sync")
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			res, err := env.Sync.Sync(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "synced %d cards, %d tags, %d templates at %s\n",
				res.Cards, res.Tags, res.Templates, res.SyncedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	rootCmd.AddCommand(syncCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			st, err := env.Stats.Compute(context.Background())
			if err != nil {
				return err
			}
			return printJSON(st)
		},
	}
	rootCmd.AddCommand(statsCmd)
}
