package model

import (
	"fmt"
	"strings"
	"time"
)

// CardType discriminates the card kinds sharing one schema.
// Values double as the lowercase wire encoding.
type CardType string

const (
	CardTypeQuote      CardType = "quote"
	CardTypeCode       CardType = "code"
	CardTypeIdea       CardType = "idea"
	CardTypeArticle    CardType = "article"
	CardTypeDictionary CardType = "dictionary"
	CardTypeChecklist  CardType = "checklist"
)

// CardTypes returns all known card types in a stable order.
func CardTypes() []CardType {
	return []CardType{
		CardTypeQuote,
		CardTypeCode,
		CardTypeIdea,
		CardTypeArticle,
		CardTypeDictionary,
		CardTypeChecklist,
	}
}

// ParseCardType converts a wire string into a CardType.
func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CardTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown card type %q", ErrValidation, s)
}

// Card is the aggregate root: core fields plus optional type-specific
// metadata. Tags and checklist items are fully owned by the card and live
// and die with it.
type Card struct {
	ID             string        `json:"id"`
	Type           CardType      `json:"type"`
	Title          *string       `json:"title,omitempty"`
	Content        string        `json:"content"`
	Author         *string       `json:"author,omitempty"`
	Source         *string       `json:"source,omitempty"`
	Language       *string       `json:"language,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	IsFavorite     bool          `json:"isFavorite"`
	IsTemplate     bool          `json:"isTemplate"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	LastReviewedAt *time.Time    `json:"lastReviewedAt,omitempty"`
	Metadata       *CardMetadata `json:"metadata,omitempty"`
}

// CardMetadata is the variant payload for type-specific fields. All fields
// are optional; which ones are meaningful depends on Card.Type.
type CardMetadata struct {
	QuoteAuthor    *string `json:"quoteAuthor,omitempty"`
	QuoteCategory  *string `json:"quoteCategory,omitempty"`
	CodeLanguage   *string `json:"codeLanguage,omitempty"`
	CodeSnippet    *string `json:"codeSnippet,omitempty"`
	ArticleURL     *string `json:"articleUrl,omitempty"`
	ArticleSummary *string `json:"articleSummary,omitempty"`
	ArticleImage   *string `json:"articleImage,omitempty"`
	Pronunciation  *string `json:"pronunciation,omitempty"`
	Definition     *string `json:"definition,omitempty"`
	Example        *string `json:"example,omitempty"`
	IdeaPriority   *int    `json:"ideaPriority,omitempty"`
	IdeaStatus     *string `json:"ideaStatus,omitempty"`

	// ChecklistItems are ordered by Order ascending; gaps are allowed and
	// never renumbered.
	ChecklistItems []ChecklistItem `json:"checklistItems,omitempty"`
}

// ChecklistItem is a sub-item of a checklist card. ID is unique within the
// owning card only.
type ChecklistItem struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

// HasTag reports whether the card carries the given tag.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the invariants required before persisting a card.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: card content is required", ErrValidation)
	}
	if _, err := ParseCardType(string(c.Type)); err != nil {
		return err
	}
	return nil
}
