package model

// CardFilter describes a conjunctive card query: a card matches only when
// every supplied predicate matches.
type CardFilter struct {
	// Query matches case-insensitively against title, content, author or
	// any tag. Blank matches everything.
	Query string `json:"query,omitempty"`
	// Types restricts by card type; empty means all types.
	Types []CardType `json:"types,omitempty"`
	// Tags requires the card to carry every listed tag.
	Tags []string `json:"tags,omitempty"`
	// Favorite/Template, when set, require an exact flag match.
	Favorite *bool `json:"favorite,omitempty"`
	Template *bool `json:"template,omitempty"`
}

// SortKey selects the card sort dimension.
type SortKey string

const (
	SortByCreated  SortKey = "created"
	SortByUpdated  SortKey = "updated"
	SortByTitle    SortKey = "title"
	SortByReviewed SortKey = "reviewed"
)

// CardSort is a single-key sort order.
type CardSort struct {
	Key  SortKey `json:"key"`
	Desc bool    `json:"desc"`
}
