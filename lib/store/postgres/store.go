package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS yevefi_records (
		kind TEXT NOT NULL,
		key TEXT NOT NULL,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, key)
	)
`

// Store keeps records as jsonb rows keyed by (kind, key).
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the records table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset drops every record so a replay starts from an empty world.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE yevefi_records`); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) load(ctx context.Context, kind store.Kind, key common.Hash) ([]byte, error) {
	var body []byte
	row := s.pool.QueryRow(ctx, `SELECT body FROM yevefi_records WHERE kind=$1 AND key=$2`, string(kind), key.Hex())
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", kind, key, store.ErrNotFound)
		}
		return nil, err
	}
	return body, nil
}

func (s *Store) Config(ctx context.Context, key common.Hash) (pool.Config, error) {
	body, err := s.load(ctx, store.KindConfig, key)
	if err != nil {
		return pool.Config{}, err
	}
	return store.DecodeConfig(body)
}

func (s *Store) Pool(ctx context.Context, key common.Hash) (pool.Pool, error) {
	body, err := s.load(ctx, store.KindPool, key)
	if err != nil {
		return pool.Pool{}, err
	}
	return store.DecodePool(body)
}

func (s *Store) TickArray(ctx context.Context, key common.Hash) (tick.TickArray, error) {
	body, err := s.load(ctx, store.KindTickArray, key)
	if err != nil {
		return tick.TickArray{}, err
	}
	return store.DecodeTickArray(body)
}

func (s *Store) Position(ctx context.Context, key common.Hash) (position.Position, error) {
	body, err := s.load(ctx, store.KindPosition, key)
	if err != nil {
		return position.Position{}, err
	}
	return store.DecodePosition(body)
}

func (s *Store) Pools(ctx context.Context) ([]pool.Pool, error) {
	rows, err := s.pool.Query(ctx, `SELECT body FROM yevefi_records WHERE kind=$1 ORDER BY key`, string(store.KindPool))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []pool.Pool
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		p, err := store.DecodePool(body)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// Commit applies the batch in one transaction.
func (s *Store) Commit(ctx context.Context, b *store.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range b.Writes() {
		if w.Value == nil {
			batch.Queue(`DELETE FROM yevefi_records WHERE kind=$1 AND key=$2`, string(w.Kind), w.Key.Hex())
			continue
		}
		body, err := store.Encode(w.Value)
		if err != nil {
			return fmt.Errorf("commit %s %s: %w", w.Kind, w.Key, err)
		}
		batch.Queue(`
			INSERT INTO yevefi_records (kind, key, body, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (kind, key)
			DO UPDATE SET body = EXCLUDED.body, updated_at = now()
		`, string(w.Kind), w.Key.Hex(), string(body))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range b.Writes() {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
