package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/store"
)

//go:embed schema.sql
var ddl string

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the table family if it does not exist.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// New constructs a postgres-backed store publishing change events on bus.
func New(db *sql.DB, bus *events.Bus) store.Store {
	return &pgStore{db: db, bus: bus}
}

type pgStore struct {
	db  *sql.DB
	bus *events.Bus
}

func (s *pgStore) Cards() store.Cards         { return &cards{db: s.db, bus: s.bus} }
func (s *pgStore) Tags() store.Tags           { return &tags{db: s.db, bus: s.bus} }
func (s *pgStore) Templates() store.Templates { return &templates{db: s.db, bus: s.bus} }
func (s *pgStore) Users() store.Users         { return &users{db: s.db, bus: s.bus} }
func (s *pgStore) SyncState() store.SyncState { return &syncState{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}

// --- cards ---

type cards struct {
	db  *sql.DB
	bus *events.Bus
}

const cardColumns = `id, type, title, content, author, source, language, is_favorite, is_template, created_at, updated_at, last_reviewed_at`

const metadataColumns = `card_id, quote_author, quote_category, code_language, code_snippet, article_url, article_summary, article_image, pronunciation, definition, example, idea_priority, idea_status`

func (c *cards) Create(ctx context.Context, card *model.Card) (*model.Card, error) {
	out := *card
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO cards (`+cardColumns+`)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
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
	row := c.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
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
            UPDATE cards SET type = $1, title = $2, content = $3, author = $4, source = $5,
                language = $6, is_favorite = $7, is_template = $8, created_at = $9,
                updated_at = $10, last_reviewed_at = $11
            WHERE id = $12`,
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
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
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
	res, err := c.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
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

func insertCardChildren(ctx context.Context, tx *sql.Tx, card *model.Card) error {
	for _, tag := range card.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_tags (card_id, tag) VALUES ($1,$2)`, card.ID, tag); err != nil {
			return err
		}
	}
	m := card.Metadata
	if m == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO card_metadata (`+metadataColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		card.ID, m.QuoteAuthor, m.QuoteCategory, m.CodeLanguage, m.CodeSnippet,
		m.ArticleURL, m.ArticleSummary, m.ArticleImage, m.Pronunciation,
		m.Definition, m.Example, m.IdeaPriority, m.IdeaStatus); err != nil {
		return err
	}
	for _, it := range m.ChecklistItems {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO checklist_items (card_id, item_id, text, is_completed, item_order)
            VALUES ($1,$2,$3,$4,$5)`,
			card.ID, it.ID, it.Text, it.IsCompleted, it.Order); err != nil {
			return err
		}
	}
	return nil
}

func deleteCardChildren(ctx context.Context, tx *sql.Tx, id string) error {
	for _, q := range []string{
		`DELETE FROM card_tags WHERE card_id = $1`,
		`DELETE FROM checklist_items WHERE card_id = $1`,
		`DELETE FROM card_metadata WHERE card_id = $1`,
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

func (c *cards) hydrate(ctx context.Context, card *model.Card) error {
	tagRows, err := c.db.QueryContext(ctx,
		`SELECT tag FROM card_tags WHERE card_id = $1 ORDER BY tag`, card.ID)
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
		`SELECT `+metadataColumns+` FROM card_metadata WHERE card_id = $1`, card.ID)
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
        FROM checklist_items WHERE card_id = $1 ORDER BY item_order`, card.ID)
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

// --- tags ---

type tags struct {
	db  *sql.DB
	bus *events.Bus
}

const tagColumns = `id, name, color, description, card_count, created_at`

func (t *tags) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	out := *tag
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tags (`+tagColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		out.ID, out.Name, out.Color, out.Description, out.CardCount, out.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return &out, nil
}

func (t *tags) Get(ctx context.Context, id string) (*model.Tag, error) {
	return t.one(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
}

func (t *tags) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	return t.one(ctx, `SELECT `+tagColumns+` FROM tags WHERE name = $1`, name)
}

func (t *tags) one(ctx context.Context, query, arg string) (*model.Tag, error) {
	var out model.Tag
	row := t.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&out.ID, &out.Name, &out.Color, &out.Description, &out.CardCount, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (t *tags) List(ctx context.Context) ([]*model.Tag, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Description, &tag.CardCount, &tag.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &tag)
	}
	return out, rows.Err()
}

func (t *tags) Update(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	out := *tag
	res, err := t.db.ExecContext(ctx, `
        UPDATE tags SET name = $1, color = $2, description = $3, card_count = $4, created_at = $5
        WHERE id = $6`,
		out.Name, out.Color, out.Description, out.CardCount, out.CreatedAt, out.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return &out, nil
}

func (t *tags) Upsert(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	out := *tag
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tags (`+tagColumns+`) VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name, color = excluded.color, description = excluded.description,
            card_count = excluded.card_count, created_at = excluded.created_at`,
		out.ID, out.Name, out.Color, out.Description, out.CardCount, out.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return &out, nil
}

func (t *tags) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return err
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return nil
}

func (t *tags) DeleteAll(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM tags`); err != nil {
		return err
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return nil
}

// --- templates ---

type templates struct {
	db  *sql.DB
	bus *events.Bus
}

const templateColumns = `id, name, description, card_type, default_content, default_metadata, default_tags, usage_count, is_system, created_at, updated_at`

func templateArgs(t *model.Template) ([]any, error) {
	var metaJSON, tagsJSON *string
	if t.DefaultMetadata != nil {
		b, err := json.Marshal(t.DefaultMetadata)
		if err != nil {
			return nil, err
		}
		s := string(b)
		metaJSON = &s
	}
	if len(t.DefaultTags) > 0 {
		b, err := json.Marshal(t.DefaultTags)
		if err != nil {
			return nil, err
		}
		s := string(b)
		tagsJSON = &s
	}
	return []any{t.ID, t.Name, t.Description, string(t.CardType), t.DefaultContent,
		metaJSON, tagsJSON, t.UsageCount, t.IsSystem, t.CreatedAt, t.UpdatedAt}, nil
}

func scanTemplate(r rowScanner) (*model.Template, error) {
	var t model.Template
	var cardType string
	var metaJSON, tagsJSON *string
	if err := r.Scan(&t.ID, &t.Name, &t.Description, &cardType, &t.DefaultContent,
		&metaJSON, &tagsJSON, &t.UsageCount, &t.IsSystem, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CardType = model.CardType(cardType)
	if metaJSON != nil {
		if err := json.Unmarshal([]byte(*metaJSON), &t.DefaultMetadata); err != nil {
			return nil, err
		}
	}
	if tagsJSON != nil {
		if err := json.Unmarshal([]byte(*tagsJSON), &t.DefaultTags); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (s *templates) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	out := *t
	args, err := templateArgs(&out)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO templates (`+templateColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, args...); err != nil {
		return nil, mapErr(err)
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return &out, nil
}

func (s *templates) Get(ctx context.Context, id string) (*model.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (s *templates) List(ctx context.Context) ([]*model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *templates) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	out := *t
	args, err := templateArgs(&out)
	if err != nil {
		return nil, err
	}
	args = append(args[1:], args[0])
	res, err := s.db.ExecContext(ctx, `
        UPDATE templates SET name = $1, description = $2, card_type = $3, default_content = $4,
            default_metadata = $5, default_tags = $6, usage_count = $7, is_system = $8,
            created_at = $9, updated_at = $10
        WHERE id = $11`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return &out, nil
}

func (s *templates) Upsert(ctx context.Context, t *model.Template) (*model.Template, error) {
	out := *t
	args, err := templateArgs(&out)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO templates (`+templateColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name, description = excluded.description,
            card_type = excluded.card_type, default_content = excluded.default_content,
            default_metadata = excluded.default_metadata, default_tags = excluded.default_tags,
            usage_count = excluded.usage_count, is_system = excluded.is_system,
            created_at = excluded.created_at, updated_at = excluded.updated_at`, args...); err != nil {
		return nil, mapErr(err)
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return &out, nil
}

func (s *templates) IncrementUsage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`, id)
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
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return nil
}

func (s *templates) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return err
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return nil
}

func (s *templates) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return nil
}

// --- users ---

type users struct {
	db  *sql.DB
	bus *events.Bus
}

const userColumns = `id, username, display_name, email, avatar_url, preferences, created_at, updated_at`

func (u *users) Save(ctx context.Context, user *model.User) (*model.User, error) {
	out := *user
	var prefsJSON *string
	if out.Preferences != nil {
		b, err := json.Marshal(out.Preferences)
		if err != nil {
			return nil, err
		}
		s := string(b)
		prefsJSON = &s
	}
	err := withTx(ctx, u.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id <> $1`, out.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT(id) DO UPDATE SET
                username = excluded.username, display_name = excluded.display_name,
                email = excluded.email, avatar_url = excluded.avatar_url,
                preferences = excluded.preferences, created_at = excluded.created_at,
                updated_at = excluded.updated_at`,
			out.ID, out.Username, out.DisplayName, out.Email, out.AvatarURL, prefsJSON,
			out.CreatedAt, out.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	u.bus.Publish(events.Event{Family: events.FamilyUsers})
	return &out, nil
}

func (u *users) Current(ctx context.Context) (*model.User, error) {
	var out model.User
	var prefsJSON *string
	row := u.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY updated_at DESC LIMIT 1`)
	if err := row.Scan(&out.ID, &out.Username, &out.DisplayName, &out.Email, &out.AvatarURL,
		&prefsJSON, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if prefsJSON != nil {
		if err := json.Unmarshal([]byte(*prefsJSON), &out.Preferences); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context) error {
	if _, err := u.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return err
	}
	u.bus.Publish(events.Event{Family: events.FamilyUsers})
	return nil
}

// --- sync state ---

type syncState struct {
	db *sql.DB
}

const lastSyncKey = "last_sync_at"

func (s *syncState) LastSyncAt(ctx context.Context) (*time.Time, error) {
	var raw string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = $1`, lastSyncKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func (s *syncState) SetLastSyncAt(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sync_state (key, value) VALUES ($1,$2)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncKey, at.UTC().Format(time.RFC3339Nano))
	return err
}
