package remote

import (
	"fmt"
	"time"

	"github.com/cardkeep/cardkeep/internal/model"
)

// Wire DTOs: timestamps travel as ISO-8601 strings, enums as lowercase
// strings. The gateway is a pure request/response translation layer.

type cardDTO struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Title          *string      `json:"title,omitempty"`
	Content        string       `json:"content"`
	Author         *string      `json:"author,omitempty"`
	Source         *string      `json:"source,omitempty"`
	Language       *string      `json:"language,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	IsFavorite     bool         `json:"isFavorite"`
	IsTemplate     bool         `json:"isTemplate"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
	LastReviewedAt *string      `json:"lastReviewedAt,omitempty"`
	Metadata       *metadataDTO `json:"metadata,omitempty"`
}

type metadataDTO struct {
	QuoteAuthor    *string            `json:"quoteAuthor,omitempty"`
	QuoteCategory  *string            `json:"quoteCategory,omitempty"`
	CodeLanguage   *string            `json:"codeLanguage,omitempty"`
	CodeSnippet    *string            `json:"codeSnippet,omitempty"`
	ArticleURL     *string            `json:"articleUrl,omitempty"`
	ArticleSummary *string            `json:"articleSummary,omitempty"`
	ArticleImage   *string            `json:"articleImage,omitempty"`
	Pronunciation  *string            `json:"pronunciation,omitempty"`
	Definition     *string            `json:"definition,omitempty"`
	Example        *string            `json:"example,omitempty"`
	IdeaPriority   *int               `json:"ideaPriority,omitempty"`
	IdeaStatus     *string            `json:"ideaStatus,omitempty"`
	ChecklistItems []checklistItemDTO `json:"checklistItems,omitempty"`
}

type checklistItemDTO struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

type tagDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
	CardCount   int     `json:"cardCount"`
	CreatedAt   string  `json:"createdAt"`
}

type templateDTO struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     *string      `json:"description,omitempty"`
	CardType        string       `json:"cardType"`
	DefaultContent  *string      `json:"defaultContent,omitempty"`
	DefaultMetadata *metadataDTO `json:"defaultMetadata,omitempty"`
	DefaultTags     []string     `json:"defaultTags,omitempty"`
	UsageCount      int          `json:"usageCount"`
	IsSystem        bool         `json:"isSystemTemplate"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       string       `json:"updatedAt"`
}

type userDTO struct {
	ID          string                 `json:"id"`
	Username    string                 `json:"username"`
	DisplayName *string                `json:"displayName,omitempty"`
	Email       *string                `json:"email,omitempty"`
	AvatarURL   *string                `json:"avatarUrl,omitempty"`
	Preferences *model.UserPreferences `json:"preferences,omitempty"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
}

// --- time helpers ---

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func encodeTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := encodeTime(*t)
	return &s
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}

func decodeTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := decodeTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- card ---

func cardToWire(c *model.Card) cardDTO {
	return cardDTO{
		ID:             c.ID,
		Type:           string(c.Type),
		Title:          c.Title,
		Content:        c.Content,
		Author:         c.Author,
		Source:         c.Source,
		Language:       c.Language,
		Tags:           c.Tags,
		IsFavorite:     c.IsFavorite,
		IsTemplate:     c.IsTemplate,
		CreatedAt:      encodeTime(c.CreatedAt),
		UpdatedAt:      encodeTime(c.UpdatedAt),
		LastReviewedAt: encodeTimePtr(c.LastReviewedAt),
		Metadata:       metadataToWire(c.Metadata),
	}
}

func cardFromWire(d cardDTO) (*model.Card, error) {
	typ, err := model.ParseCardType(d.Type)
	if err != nil {
		return nil, err
	}
	created, err := decodeTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := decodeTime(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	reviewed, err := decodeTimePtr(d.LastReviewedAt)
	if err != nil {
		return nil, err
	}
	return &model.Card{
		ID:             d.ID,
		Type:           typ,
		Title:          d.Title,
		Content:        d.Content,
		Author:         d.Author,
		Source:         d.Source,
		Language:       d.Language,
		Tags:           d.Tags,
		IsFavorite:     d.IsFavorite,
		IsTemplate:     d.IsTemplate,
		CreatedAt:      created,
		UpdatedAt:      updated,
		LastReviewedAt: reviewed,
		Metadata:       metadataFromWire(d.Metadata),
	}, nil
}

func metadataToWire(m *model.CardMetadata) *metadataDTO {
	if m == nil {
		return nil
	}
	out := &metadataDTO{
		QuoteAuthor:    m.QuoteAuthor,
		QuoteCategory:  m.QuoteCategory,
		CodeLanguage:   m.CodeLanguage,
		CodeSnippet:    m.CodeSnippet,
		ArticleURL:     m.ArticleURL,
		ArticleSummary: m.ArticleSummary,
		ArticleImage:   m.ArticleImage,
		Pronunciation:  m.Pronunciation,
		Definition:     m.Definition,
		Example:        m.Example,
		IdeaPriority:   m.IdeaPriority,
		IdeaStatus:     m.IdeaStatus,
	}
	for _, it := range m.ChecklistItems {
		out.ChecklistItems = append(out.ChecklistItems, checklistItemDTO(it))
	}
	return out
}

func metadataFromWire(d *metadataDTO) *model.CardMetadata {
	if d == nil {
		return nil
	}
	out := &model.CardMetadata{
		QuoteAuthor:    d.QuoteAuthor,
		QuoteCategory:  d.QuoteCategory,
		CodeLanguage:   d.CodeLanguage,
		CodeSnippet:    d.CodeSnippet,
		ArticleURL:     d.ArticleURL,
		ArticleSummary: d.ArticleSummary,
		ArticleImage:   d.ArticleImage,
		Pronunciation:  d.Pronunciation,
		Definition:     d.Definition,
		Example:        d.Example,
		IdeaPriority:   d.IdeaPriority,
		IdeaStatus:     d.IdeaStatus,
	}
	for _, it := range d.ChecklistItems {
		out.ChecklistItems = append(out.ChecklistItems, model.ChecklistItem(it))
	}
	return out
}

// --- tag ---

func tagToWire(t *model.Tag) tagDTO {
	return tagDTO{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
		CardCount:   t.CardCount,
		CreatedAt:   encodeTime(t.CreatedAt),
	}
}

func tagFromWire(d tagDTO) (*model.Tag, error) {
	created, err := decodeTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &model.Tag{
		ID:          d.ID,
		Name:        d.Name,
		Color:       d.Color,
		Description: d.Description,
		CardCount:   d.CardCount,
		CreatedAt:   created,
	}, nil
}

// --- template ---

func templateToWire(t *model.Template) templateDTO {
	return templateDTO{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		CardType:        string(t.CardType),
		DefaultContent:  t.DefaultContent,
		DefaultMetadata: metadataToWire(t.DefaultMetadata),
		DefaultTags:     t.DefaultTags,
		UsageCount:      t.UsageCount,
		IsSystem:        t.IsSystem,
		CreatedAt:       encodeTime(t.CreatedAt),
		UpdatedAt:       encodeTime(t.UpdatedAt),
	}
}

func templateFromWire(d templateDTO) (*model.Template, error) {
	cardType, err := model.ParseCardType(d.CardType)
	if err != nil {
		return nil, err
	}
	created, err := decodeTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := decodeTime(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.Template{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		CardType:        cardType,
		DefaultContent:  d.DefaultContent,
		DefaultMetadata: metadataFromWire(d.DefaultMetadata),
		DefaultTags:     d.DefaultTags,
		UsageCount:      d.UsageCount,
		IsSystem:        d.IsSystem,
		CreatedAt:       created,
		UpdatedAt:       updated,
	}, nil
}

// --- user ---

func userToWire(u *model.User) userDTO {
	return userDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		Preferences: u.Preferences,
		CreatedAt:   encodeTime(u.CreatedAt),
		UpdatedAt:   encodeTime(u.UpdatedAt),
	}
}

func userFromWire(d userDTO) (*model.User, error) {
	created, err := decodeTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := decodeTime(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:          d.ID,
		Username:    d.Username,
		DisplayName: d.DisplayName,
		Email:       d.Email,
		AvatarURL:   d.AvatarURL,
		Preferences: d.Preferences,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}
