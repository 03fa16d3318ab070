package sqlite

import (
	"context"
	"database/sql"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
)

type tags struct {
	db  *sql.DB
	bus *events.Bus
}

const tagColumns = `id, name, color, description, card_count, created_at`

func (t *tags) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	out := *tag
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tags (`+tagColumns+`) VALUES (?,?,?,?,?,?)`,
		out.ID, out.Name, out.Color, out.Description, out.CardCount, out.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	t.bus.Publish(events.Event{Family: events.FamilyTags})
	return &out, nil
}

func (t *tags) Get(ctx context.Context, id string) (*model.Tag, error) {
	return t.one(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
}

func (t *tags) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	return t.one(ctx, `SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
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
        UPDATE tags SET name = ?, color = ?, description = ?, card_count = ?, created_at = ?
        WHERE id = ?`,
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
        INSERT INTO tags (`+tagColumns+`) VALUES (?,?,?,?,?,?)
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
	res, err := t.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
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
