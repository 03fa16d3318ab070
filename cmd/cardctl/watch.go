package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardkeep/cardkeep/internal/live"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream card list snapshots as the local replica changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			feed := live.NewCardFeed(env.Bus, env.Store)
			for cards := range feed.Subscribe(ctx) {
				fmt.Fprintf(os.Stdout, "%d cards\n", len(cards))
				for _, c := range cards {
					title := ""
					if c.Title != nil {
						title = *c.Title
					}
					fmt.Fprintf(os.Stdout, "  %s  [%s]  %s\n", c.ID, c.Type, title)
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(watchCmd)
}
