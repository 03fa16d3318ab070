package model

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a named entity distinct from the free-form tag strings stored per
// card. Name is unique; a second tag with an existing name is a conflict.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       *string   `json:"color,omitempty"`
	Description *string   `json:"description,omitempty"`
	CardCount   int       `json:"cardCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t *Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	return nil
}

// Template is a reusable card preset. UsageCount is incremented every time
// a card is instantiated from it.
type Template struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	CardType        CardType      `json:"cardType"`
	DefaultContent  *string       `json:"defaultContent,omitempty"`
	DefaultMetadata *CardMetadata `json:"defaultMetadata,omitempty"`
	DefaultTags     []string      `json:"defaultTags,omitempty"`
	UsageCount      int           `json:"usageCount"`
	IsSystem        bool          `json:"isSystemTemplate"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if _, err := ParseCardType(string(t.CardType)); err != nil {
		return err
	}
	return nil
}

// UserPreferences holds per-user client settings.
type UserPreferences struct {
	Theme            string   `json:"theme,omitempty"`
	Language         string   `json:"language,omitempty"`
	DefaultCardType  CardType `json:"defaultCardType,omitempty"`
	AutoSync         bool     `json:"autoSync"`
	SyncIntervalMins int      `json:"syncIntervalMinutes,omitempty"`
}

// User is the account owning the local collection. The local store holds at
// most one current user at a time.
type User struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	DisplayName *string          `json:"displayName,omitempty"`
	Email       *string          `json:"email,omitempty"`
	AvatarURL   *string          `json:"avatarUrl,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	return nil
}

// Statistics is a derived snapshot over the whole collection. It is always
// recomputed and fully replaced, never field-patched.
type Statistics struct {
	Total       int              `json:"total"`
	Favorites   int              `json:"favorites"`
	RecentEdits int              `json:"recentEdits"`
	ByType      map[CardType]int `json:"byType"`
	ByTag       map[string]int   `json:"byTag"`
	LastSyncAt  *time.Time       `json:"lastSyncAt,omitempty"`
}
