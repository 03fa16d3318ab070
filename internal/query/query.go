// Package query answers ad-hoc filter, sort and aggregation questions over
// an in-memory card collection without touching storage.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/cardkeep/cardkeep/internal/model"
)

// Filter returns the cards matching every supplied predicate.
func Filter(cards []*model.Card, f model.CardFilter) []*model.Card {
	out := make([]*model.Card, 0, len(cards))
	for _, c := range cards {
		if Matches(c, f) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether the card satisfies the filter. Predicates are
// conjunctive; a zero filter matches everything.
func Matches(c *model.Card, f model.CardFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !matchesQuery(c, q) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, c.Type) {
		return false
	}
	// tag containment: the card must carry every requested tag
	for _, t := range f.Tags {
		if !c.HasTag(t) {
			return false
		}
	}
	if f.Favorite != nil && c.IsFavorite != *f.Favorite {
		return false
	}
	if f.Template != nil && c.IsTemplate != *f.Template {
		return false
	}
	return true
}

func matchesQuery(c *model.Card, q string) bool {
	if c.Title != nil && strings.Contains(strings.ToLower(*c.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Content), q) {
		return true
	}
	if c.Author != nil && strings.Contains(strings.ToLower(*c.Author), q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func containsType(types []model.CardType, t model.CardType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of the collection; the input is not mutated.
func Sort(cards []*model.Card, s model.CardSort) []*model.Card {
	out := make([]*model.Card, len(cards))
	copy(out, cards)
	less := lessFunc(s)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

var (
	// sentinels pushing never-reviewed cards last in either direction
	reviewedMax = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	reviewedMin = time.Time{}
)

func lessFunc(s model.CardSort) func(a, b *model.Card) bool {
	switch s.Key {
	case model.SortByTitle:
		key := titleKey
		if s.Desc {
			// Descending title order reverses the string itself rather
			// than the comparison; kept for compatibility with existing
			// clients that rely on the resulting order.
			key = func(c *model.Card) string { return reverse(titleKey(c)) }
		}
		return func(a, b *model.Card) bool { return key(a) < key(b) }
	case model.SortByReviewed:
		if s.Desc {
			return func(a, b *model.Card) bool {
				return reviewedOr(a, reviewedMin).After(reviewedOr(b, reviewedMin))
			}
		}
		return func(a, b *model.Card) bool {
			return reviewedOr(a, reviewedMax).Before(reviewedOr(b, reviewedMax))
		}
	case model.SortByUpdated:
		if s.Desc {
			return func(a, b *model.Card) bool { return a.UpdatedAt.After(b.UpdatedAt) }
		}
		return func(a, b *model.Card) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		if s.Desc {
			return func(a, b *model.Card) bool { return a.CreatedAt.After(b.CreatedAt) }
		}
		return func(a, b *model.Card) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func titleKey(c *model.Card) string {
	if c.Title == nil {
		return ""
	}
	return strings.ToLower(*c.Title)
}

func reviewedOr(c *model.Card, fallback time.Time) time.Time {
	if c.LastReviewedAt == nil {
		return fallback
	}
	return *c.LastReviewedAt
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// recentEditWindow bounds the "recently edited" statistic.
const recentEditWindow = 7 * 24 * time.Hour

// Statistics recomputes the aggregate snapshot for the collection. A card
// with N tags contributes to N tag buckets.
func Statistics(cards []*model.Card, now time.Time, lastSync *time.Time) *model.Statistics {
	st := &model.Statistics{
		ByType:     make(map[model.CardType]int),
		ByTag:      make(map[string]int),
		LastSyncAt: lastSync,
	}
	cutoff := now.Add(-recentEditWindow)
	for _, c := range cards {
		st.Total++
		if c.IsFavorite {
			st.Favorites++
		}
		if c.UpdatedAt.After(cutoff) {
			st.RecentEdits++
		}
		st.ByType[c.Type]++
		for _, t := range c.Tags {
			st.ByTag[t]++
		}
	}
	return st
}
