package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cardkeep/cardkeep/internal/model"
)

func newTemplateEnv(t *testing.T) (*TemplateService, *CardService) {
	st := newTestStore(t)
	cards := NewCardService(st, nil, testLog)
	return NewTemplateService(st, cards, nil, testLog), cards
}

func TestTemplateInstantiate_SeedsCardAndBumpsUsage(t *testing.T) {
	svc, cards := newTemplateEnv(t)
	ctx := context.Background()

	content := "## Quote\n\n> "
	tpl, err := svc.Create(ctx, &model.Template{
		Name:           "quote capture",
		CardType:       model.CardTypeQuote,
		DefaultContent: &content,
		DefaultTags:    []string{"inbox"},
		DefaultMetadata: &model.CardMetadata{
			QuoteCategory: strPtr("unsorted"),
		},
	})
	if err != nil {
		t.Fatalf("Create template: %v", err)
	}

	title := "from a book"
	card, err := svc.Instantiate(ctx, tpl.ID, &title)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if card.Type != model.CardTypeQuote || card.Content != content {
		t.Fatalf("defaults not applied: %+v", card)
	}
	if card.Title == nil || *card.Title != title {
		t.Fatalf("title override lost: %v", card.Title)
	}
	if !card.HasTag("inbox") {
		t.Fatalf("default tags lost: %v", card.Tags)
	}
	if card.Metadata == nil || card.Metadata.QuoteCategory == nil || *card.Metadata.QuoteCategory != "unsorted" {
		t.Fatalf("default metadata lost: %+v", card.Metadata)
	}

	// the card is a real aggregate, readable through the card service
	if _, err := cards.Get(ctx, card.ID); err != nil {
		t.Fatalf("instantiated card not persisted: %v", err)
	}

	got, err := svc.Get(ctx, tpl.ID)
	if err != nil || got.UsageCount != 1 {
		t.Fatalf("usage count: got=%+v err=%v", got, err)
	}
}

func TestTemplateInstantiate_MissingTemplate(t *testing.T) {
	svc, _ := newTemplateEnv(t)
	if _, err := svc.Instantiate(context.Background(), "ghost", nil); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTemplateCreate_RejectsUnknownCardType(t *testing.T) {
	svc, _ := newTemplateEnv(t)
	if _, err := svc.Create(context.Background(), &model.Template{Name: "x", CardType: "song"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
