package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	userCmd := &cobra.Command{Use: "user", Short: "Current user operations"}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			u, err := env.Users.Current(context.Background())
			if err != nil {
				return err
			}
			return printJSON(u)
		},
	}
	userCmd.AddCommand(showCmd)

	signOutCmd := &cobra.Command{
		Use:   "signout",
		Short: "Clear the local user record",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			return env.Users.SignOut(context.Background())
		},
	}
	userCmd.AddCommand(signOutCmd)

	rootCmd.AddCommand(userCmd)
}
