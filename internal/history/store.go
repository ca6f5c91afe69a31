package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested entry or template does not exist.
var ErrNotFound = errors.New("history record not found")

// Store abstracts history and template persistence.
type Store interface {
	InsertEntry(ctx context.Context, e Entry) error
	ListEntries(ctx context.Context, limit int) ([]Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteAllEntries(ctx context.Context) error

	InsertTemplate(ctx context.Context, t Template) error
	GetTemplate(ctx context.Context, id string) (Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, t Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

// PGStore persists history entries and templates in Postgres. Shop and
// line snapshots are JSONB documents so their shape can evolve without
// schema churn.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (st *PGStore) InsertEntry(ctx context.Context, e Entry) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	snapshot, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	_, err = st.Pool.Exec(ctx, `
		INSERT INTO history_entries (id, snapshot, created_at)
		VALUES ($1, $2, $3)`,
		e.ID, snapshot, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (st *PGStore) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	if st == nil || st.Pool == nil {
		return nil, errors.New("history store not configured")
	}
	if limit < 1 {
		limit = 1
	}
	rows, err := st.Pool.Query(ctx, `
		SELECT snapshot FROM history_entries
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (st *PGStore) DeleteEntry(ctx context.Context, id string) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	tag, err := st.Pool.Exec(ctx, `DELETE FROM history_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PGStore) DeleteAllEntries(ctx context.Context) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	if _, err := st.Pool.Exec(ctx, `DELETE FROM history_entries`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (st *PGStore) InsertTemplate(ctx context.Context, t Template) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	snapshot, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = st.Pool.Exec(ctx, `
		INSERT INTO templates (id, name, position, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Position, snapshot, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (st *PGStore) GetTemplate(ctx context.Context, id string) (Template, error) {
	if st == nil || st.Pool == nil {
		return Template{}, errors.New("history store not configured")
	}
	var raw []byte
	err := st.Pool.QueryRow(ctx,
		`SELECT snapshot FROM templates WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, fmt.Errorf("select template: %w", err)
	}
	var t Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	return t, nil
}

func (st *PGStore) ListTemplates(ctx context.Context) ([]Template, error) {
	if st == nil || st.Pool == nil {
		return nil, errors.New("history store not configured")
	}
	rows, err := st.Pool.Query(ctx, `
		SELECT snapshot FROM templates
		ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		var t Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (st *PGStore) UpdateTemplate(ctx context.Context, t Template) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	snapshot, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	tag, err := st.Pool.Exec(ctx, `
		UPDATE templates SET name = $2, position = $3, snapshot = $4
		WHERE id = $1`,
		t.ID, t.Name, t.Position, snapshot)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PGStore) DeleteTemplate(ctx context.Context, id string) error {
	if st == nil || st.Pool == nil {
		return errors.New("history store not configured")
	}
	tag, err := st.Pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
