package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardType(t *testing.T) {
	for _, ct := range CardTypes() {
		got, err := ParseCardType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}

	_, err := ParseCardType("song")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	// input is case folded and trimmed before matching
	got, err := ParseCardType(" Quote ")
	require.NoError(t, err)
	assert.Equal(t, CardTypeQuote, got)
}

func TestCardValidate(t *testing.T) {
	c := &Card{Type: CardTypeIdea, Content: "x"}
	assert.NoError(t, c.Validate())

	assert.ErrorIs(t, (&Card{Type: CardTypeIdea}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Card{Type: CardTypeIdea, Content: "  "}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Card{Type: "song", Content: "x"}).Validate(), ErrValidation)
}

func TestCardHasTag(t *testing.T) {
	c := &Card{Tags: []string{"go", "notes"}}
	assert.True(t, c.HasTag("go"))
	assert.False(t, c.HasTag("GO"), "tag matching is exact")
	assert.False(t, c.HasTag("rust"))
}

func TestTagAndTemplateValidate(t *testing.T) {
	assert.ErrorIs(t, (&Tag{Name: " "}).Validate(), ErrValidation)
	assert.NoError(t, (&Tag{Name: "reading"}).Validate())

	assert.ErrorIs(t, (&Template{Name: "", CardType: CardTypeIdea}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Template{Name: "x", CardType: "song"}).Validate(), ErrValidation)
	assert.NoError(t, (&Template{Name: "x", CardType: CardTypeIdea}).Validate())

	assert.ErrorIs(t, (&User{}).Validate(), ErrValidation)
	assert.NoError(t, (&User{Username: "ada"}).Validate())
}
