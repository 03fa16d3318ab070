package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
)

type cards struct {
	db  *sql.DB
	bus *events.Bus
}

const cardColumns = `id, type, title, content, author, source, language, is_favorite, is_template, created_at, updated_at, last_reviewed_at`

func (c *cards) Create(ctx context.Context, card *model.Card) (*model.Card, error) {
	out := *card
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO cards (`+cardColumns+`)
            VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			out.ID, string(out.Type), out.Title, out.Content, out.Author, out.Source, out.Language,
			out.IsFavorite, out.IsTemplate, out.CreatedAt, out.UpdatedAt, out.LastReviewedAt); err != nil {
			return err
		}
		return insertCardChildren(ctx, tx, &out)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	c.bus.Publish(events.Event{Family: events.FamilyCards})
	return &out, nil
}

func (c *cards) Get(ctx context.Context, id string) (*model.Card, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := c.hydrate(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *cards) List(ctx context.Context) ([]*model.Card, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Card
	byID := make(map[string]*model.Card)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
		byID[card.ID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	tagRows, err := c.db.QueryContext(ctx, `SELECT card_id, tag FROM card_tags ORDER BY card_id, tag`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var id, tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if card, ok := byID[id]; ok {
			card.Tags = append(card.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	metaRows, err := c.db.QueryContext(ctx, `SELECT `+metadataColumns+` FROM card_metadata`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = metaRows.Close() }()
	for metaRows.Next() {
		id, meta, err := scanMetadata(metaRows)
		if err != nil {
			return nil, err
		}
		if card, ok := byID[id]; ok {
			card.Metadata = meta
		}
	}
	if err := metaRows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := c.db.QueryContext(ctx, `
        SELECT card_id, item_id, text, is_completed, item_order
        FROM checklist_items ORDER BY card_id, item_order`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()
	for itemRows.Next() {
		var id string
		var it model.ChecklistItem
		if err := itemRows.Scan(&id, &it.ID, &it.Text, &it.IsCompleted, &it.Order); err != nil {
			return nil, err
		}
		card, ok := byID[id]
		if !ok {
			continue
		}
		if card.Metadata == nil {
			card.Metadata = &model.CardMetadata{}
		}
		card.Metadata.ChecklistItems = append(card.Metadata.ChecklistItems, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cards) Update(ctx context.Context, card *model.Card) (*model.Card, error) {
	out := *card
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE cards SET type = ?, title = ?, content = ?, author = ?, source = ?,
                language = ?, is_favorite = ?, is_template = ?, created_at = ?,
                updated_at = ?, last_reviewed_at = ?
            WHERE id = ?`,
			string(out.Type), out.Title, out.Content, out.Author, out.Source, out.Language,
			out.IsFavorite, out.IsTemplate, out.CreatedAt, out.UpdatedAt, out.LastReviewedAt, out.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrNotFound
		}
		if err := deleteCardChildren(ctx, tx, out.ID); err != nil {
			return err
		}
		return insertCardChildren(ctx, tx, &out)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	c.bus.Publish(events.Event{Family: events.FamilyCards})
	return &out, nil
}

func (c *cards) Upsert(ctx context.Context, card *model.Card) (*model.Card, error) {
	out := *card
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO cards (`+cardColumns+`)
            VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
            ON CONFLICT(id) DO UPDATE SET
                type = excluded.type, title = excluded.title, content = excluded.content,
                author = excluded.author, source = excluded.source, language = excluded.language,
                is_favorite = excluded.is_favorite, is_template = excluded.is_template,
                created_at = excluded.created_at, updated_at = excluded.updated_at,
                last_reviewed_at = excluded.last_reviewed_at`,
			out.ID, string(out.Type), out.Title, out.Content, out.Author, out.Source, out.Language,
			out.IsFavorite, out.IsTemplate, out.CreatedAt, out.UpdatedAt, out.LastReviewedAt); err != nil {
			return err
		}
		if err := deleteCardChildren(ctx, tx, out.ID); err != nil {
			return err
		}
		return insertCardChildren(ctx, tx, &out)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	c.bus.Publish(events.Event{Family: events.FamilyCards})
	return &out, nil
}

func (c *cards) Delete(ctx context.Context, id string) error {
	// child rows are removed by ON DELETE CASCADE
	res, err := c.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return err
	}
	c.bus.Publish(events.Event{Family: events.FamilyCards})
	return nil
}

func (c *cards) DeleteAll(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return err
	}
	c.bus.Publish(events.Event{Family: events.FamilyCards})
	return nil
}

// --- aggregate helpers ---

const metadataColumns = `card_id, quote_author, quote_category, code_language, code_snippet, article_url, article_summary, article_image, pronunciation, definition, example, idea_priority, idea_status`

func insertCardChildren(ctx context.Context, tx *sql.Tx, card *model.Card) error {
	for _, tag := range card.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_tags (card_id, tag) VALUES (?,?)`, card.ID, tag); err != nil {
			return err
		}
	}
	m := card.Metadata
	if m == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO card_metadata (`+metadataColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		card.ID, m.QuoteAuthor, m.QuoteCategory, m.CodeLanguage, m.CodeSnippet,
		m.ArticleURL, m.ArticleSummary, m.ArticleImage, m.Pronunciation,
		m.Definition, m.Example, m.IdeaPriority, m.IdeaStatus); err != nil {
		return err
	}
	for _, it := range m.ChecklistItems {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO checklist_items (card_id, item_id, text, is_completed, item_order)
            VALUES (?,?,?,?,?)`,
			card.ID, it.ID, it.Text, it.IsCompleted, it.Order); err != nil {
			return err
		}
	}
	return nil
}

func deleteCardChildren(ctx context.Context, tx *sql.Tx, id string) error {
	for _, q := range []string{
		`DELETE FROM card_tags WHERE card_id = ?`,
		`DELETE FROM checklist_items WHERE card_id = ?`,
		`DELETE FROM card_metadata WHERE card_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(r rowScanner) (*model.Card, error) {
	var card model.Card
	var typ string
	if err := r.Scan(&card.ID, &typ, &card.Title, &card.Content, &card.Author, &card.Source,
		&card.Language, &card.IsFavorite, &card.IsTemplate, &card.CreatedAt, &card.UpdatedAt,
		&card.LastReviewedAt); err != nil {
		return nil, err
	}
	card.Type = model.CardType(typ)
	return &card, nil
}

func scanMetadata(r rowScanner) (string, *model.CardMetadata, error) {
	var id string
	var m model.CardMetadata
	if err := r.Scan(&id, &m.QuoteAuthor, &m.QuoteCategory, &m.CodeLanguage, &m.CodeSnippet,
		&m.ArticleURL, &m.ArticleSummary, &m.ArticleImage, &m.Pronunciation,
		&m.Definition, &m.Example, &m.IdeaPriority, &m.IdeaStatus); err != nil {
		return "", nil, err
	}
	return id, &m, nil
}

// hydrate loads the card's owned rows: tags, metadata and checklist items.
func (c *cards) hydrate(ctx context.Context, card *model.Card) error {
	tagRows, err := c.db.QueryContext(ctx,
		`SELECT tag FROM card_tags WHERE card_id = ? ORDER BY tag`, card.ID)
	if err != nil {
		return err
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return err
		}
		card.Tags = append(card.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT `+metadataColumns+` FROM card_metadata WHERE card_id = ?`, card.ID)
	_, meta, err := scanMetadata(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return err
	}
	card.Metadata = meta

	itemRows, err := c.db.QueryContext(ctx, `
        SELECT item_id, text, is_completed, item_order
        FROM checklist_items WHERE card_id = ? ORDER BY item_order`, card.ID)
	if err != nil {
		return err
	}
	defer func() { _ = itemRows.Close() }()
	for itemRows.Next() {
		var it model.ChecklistItem
		if err := itemRows.Scan(&it.ID, &it.Text, &it.IsCompleted, &it.Order); err != nil {
			return err
		}
		meta.ChecklistItems = append(meta.ChecklistItems, it)
	}
	return itemRows.Err()
}
