package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cardkeep/cardkeep/internal/model"
)

func init() {
	tagsCmd := &cobra.Command{Use: "tags", Short: "Tag operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			tags, err := env.Tags.List(context.Background())
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"tags": tags, "count": len(tags)})
		},
	}
	tagsCmd.AddCommand(listCmd)

	var color, description string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := &model.Tag{Name: args[0]}
			if color != "" {
				tag.Color = &color
			}
			if description != "" {
				tag.Description = &description
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			out, err := env.Tags.Create(context.Background(), tag)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	createCmd.Flags().StringVarP(&color, "color", "c", "", "Display color")
	createCmd.Flags().StringVar(&description, "description", "", "Tag description")
	tagsCmd.AddCommand(createCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete TAG_ID",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			return env.Tags.Delete(context.Background(), args[0])
		},
	}
	tagsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(tagsCmd)
}
