package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardkeep/cardkeep/internal/model"
)

func init() {
	cardsCmd := &cobra.Command{Use: "cards", Short: "Card operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			cards, err := env.Cards.List(context.Background())
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"cards": cards, "count": len(cards)})
		},
	}
	cardsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get CARD_ID",
		Short: "Get a card by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			card, err := env.Cards.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(card)
		},
	}
	cardsCmd.AddCommand(getCmd)

	var cardType, title, content, tags string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card",
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := model.ParseCardType(cardType)
			if err != nil {
				return err
			}
			card := &model.Card{Type: ct, Content: content}
			if title != "" {
				card.Title = &title
			}
			if tags != "" {
				card.Tags = strings.Split(tags, ",")
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			out, err := env.Cards.Create(context.Background(), card)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	createCmd.Flags().StringVarP(&cardType, "type", "t", "idea", "Card type")
	createCmd.Flags().StringVar(&title, "title", "", "Card title")
	createCmd.Flags().StringVarP(&content, "content", "c", "", "Card content (required)")
	createCmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	_ = createCmd.MarkFlagRequired("content")
	cardsCmd.AddCommand(createCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CARD_ID",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			return env.Cards.Delete(context.Background(), args[0])
		},
	}
	cardsCmd.AddCommand(deleteCmd)

	favoriteCmd := &cobra.Command{
		Use:   "favorite CARD_ID",
		Short: "Toggle a card's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			out, err := env.Cards.ToggleFavorite(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cardsCmd.AddCommand(favoriteCmd)

	var query, searchTypes, searchTags, sortFlag string
	var favOnly bool
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Filter and sort cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f model.CardFilter
			var s model.CardSort
			f.Query = query
			if searchTypes != "" {
				for _, part := range strings.Split(searchTypes, ",") {
					ct, err := model.ParseCardType(strings.TrimSpace(part))
					if err != nil {
						return err
					}
					f.Types = append(f.Types, ct)
				}
			}
			if searchTags != "" {
				f.Tags = strings.Split(searchTags, ",")
			}
			if favOnly {
				t := true
				f.Favorite = &t
			}
			if sortFlag != "" {
				key := sortFlag
				if strings.HasPrefix(key, "-") {
					s.Desc = true
					key = key[1:]
				}
				s.Key = model.SortKey(key)
			}
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()
			cards, err := env.Cards.Search(context.Background(), f, s)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"cards": cards, "count": len(cards)})
		},
	}
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "Substring to match in title, content, author, or tags")
	searchCmd.Flags().StringVar(&searchTypes, "types", "", "Comma-separated card types")
	searchCmd.Flags().StringVar(&searchTags, "tags", "", "Comma-separated tags (all must match)")
	searchCmd.Flags().BoolVar(&favOnly, "favorites", false, "Only favorite cards")
	searchCmd.Flags().StringVar(&sortFlag, "sort", "", "Sort key: created, updated, title, reviewed ('-' prefix for descending)")
	cardsCmd.AddCommand(searchCmd)

	rootCmd.AddCommand(cardsCmd)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
