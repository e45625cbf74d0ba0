package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultKey is the fixed storage key the single browsing-session cart
// lives under.
const DefaultKey = "duken.cart.v1"

const createCartTable = `
CREATE TABLE IF NOT EXISTS cart_state (
	cart_key   text PRIMARY KEY,
	payload    bytea NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// PGStorage persists the cart payload in a single-row PostgreSQL key-value
// table. Every Save rewrites the whole payload, so rapid successive
// mutations resolve last-write-wins.
type PGStorage struct {
	pool *pgxpool.Pool
	key  string
}

// NewPGStorage creates a PostgreSQL-backed Storage under the given key.
// An empty key falls back to DefaultKey.
func NewPGStorage(pool *pgxpool.Pool, key string) *PGStorage {
	if key == "" {
		key = DefaultKey
	}
	return &PGStorage{pool: pool, key: key}
}

// Init creates the backing table if it does not exist.
func (s *PGStorage) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createCartTable); err != nil {
		return fmt.Errorf("create cart_state table: %w", err)
	}
	return nil
}

// Load reads the persisted payload; a missing row is (nil, nil).
func (s *PGStorage) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM cart_state WHERE cart_key = $1`, s.key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart payload: %w", err)
	}
	return payload, nil
}

// Save upserts the full payload under the fixed key.
func (s *PGStorage) Save(ctx context.Context, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cart_state (cart_key, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (cart_key)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		s.key, payload,
	)
	if err != nil {
		return fmt.Errorf("save cart payload: %w", err)
	}
	return nil
}
