package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
)

type users struct {
	db  *sql.DB
	bus *events.Bus
}

const userColumns = `id, username, display_name, email, avatar_url, preferences, created_at, updated_at`

// Save upserts the current user. The local store holds at most one user row,
// so any row with a different id is removed in the same transaction.
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
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id <> ?`, out.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?)
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
	row := s.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, lastSyncKey)
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
        INSERT INTO sync_state (key, value) VALUES (?,?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncKey, at.UTC().Format(time.RFC3339Nano))
	return err
}
