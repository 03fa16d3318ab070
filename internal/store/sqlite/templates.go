package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
)

type templates struct {
	db  *sql.DB
	bus *events.Bus
}

const templateColumns = `id, name, description, card_type, default_content, default_metadata, default_tags, usage_count, is_system, created_at, updated_at`

// Template defaults (metadata variant and tag list) are stored as JSON text
// columns; they are presets rather than queryable aggregate rows.

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
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`, args...); err != nil {
		return nil, mapErr(err)
	}
	s.bus.Publish(events.Event{Family: events.FamilyTemplates})
	return &out, nil
}

func (s *templates) Get(ctx context.Context, id string) (*model.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
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
	// shift id to the WHERE position
	args = append(args[1:], args[0])
	res, err := s.db.ExecContext(ctx, `
        UPDATE templates SET name = ?, description = ?, card_type = ?, default_content = ?,
            default_metadata = ?, default_tags = ?, usage_count = ?, is_system = ?,
            created_at = ?, updated_at = ?
        WHERE id = ?`, args...)
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
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
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
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = ?`, id)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
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
