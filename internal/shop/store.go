package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitti-app/backend-regi/internal/tax"
)

// ErrNotFound indicates the requested shop could not be located.
var ErrNotFound = errors.New("shop not found")

// Store abstracts shop persistence.
type Store interface {
	Create(ctx context.Context, s Shop) error
	Get(ctx context.Context, id string) (Shop, error)
	List(ctx context.Context) ([]Shop, error)
	Update(ctx context.Context, s Shop) error
	Delete(ctx context.Context, id string) error
}

// PGStore persists shops in Postgres. Policy and accepted rates are
// stored as JSONB so policy shape changes stay additive.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (st *PGStore) Create(ctx context.Context, s Shop) error {
	if st == nil || st.Pool == nil {
		return errors.New("shop store not configured")
	}
	policy, rates, err := encodePolicy(s)
	if err != nil {
		return err
	}
	_, err = st.Pool.Exec(ctx, `
		INSERT INTO shops (id, name, memo, policy, rates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Name, s.Memo, policy, rates, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

func (st *PGStore) Get(ctx context.Context, id string) (Shop, error) {
	if st == nil || st.Pool == nil {
		return Shop{}, errors.New("shop store not configured")
	}
	row := st.Pool.QueryRow(ctx, `
		SELECT id, name, memo, policy, rates, created_at, updated_at
		FROM shops WHERE id = $1`, id)
	s, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shop{}, ErrNotFound
		}
		return Shop{}, fmt.Errorf("select shop: %w", err)
	}
	return s, nil
}

func (st *PGStore) List(ctx context.Context) ([]Shop, error) {
	if st == nil || st.Pool == nil {
		return nil, errors.New("shop store not configured")
	}
	rows, err := st.Pool.Query(ctx, `
		SELECT id, name, memo, policy, rates, created_at, updated_at
		FROM shops ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var out []Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (st *PGStore) Update(ctx context.Context, s Shop) error {
	if st == nil || st.Pool == nil {
		return errors.New("shop store not configured")
	}
	policy, rates, err := encodePolicy(s)
	if err != nil {
		return err
	}
	tag, err := st.Pool.Exec(ctx, `
		UPDATE shops SET name = $2, memo = $3, policy = $4, rates = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, s.Name, s.Memo, policy, rates, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PGStore) Delete(ctx context.Context, id string) error {
	if st == nil || st.Pool == nil {
		return errors.New("shop store not configured")
	}
	tag, err := st.Pool.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodePolicy(s Shop) ([]byte, []byte, error) {
	policy, err := json.Marshal(s.Policy)
	if err != nil {
		return nil, nil, fmt.Errorf("encode policy: %w", err)
	}
	rates, err := json.Marshal(s.Rates)
	if err != nil {
		return nil, nil, fmt.Errorf("encode rates: %w", err)
	}
	return policy, rates, nil
}

func scanShop(row pgx.Row) (Shop, error) {
	var (
		s      Shop
		policy []byte
		rates  []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Memo, &policy, &rates, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Shop{}, err
	}
	if err := json.Unmarshal(policy, &s.Policy); err != nil {
		return Shop{}, fmt.Errorf("decode policy: %w", err)
	}
	if len(rates) > 0 {
		var parsed []tax.Rate
		if err := json.Unmarshal(rates, &parsed); err != nil {
			return Shop{}, fmt.Errorf("decode rates: %w", err)
		}
		s.Rates = parsed
	}
	return Normalize(s), nil
}
