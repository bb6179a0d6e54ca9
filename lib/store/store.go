// Package store keeps the persisted records of the pool state machine:
// configs, pools, tick arrays and positions, each addressed by a stable key.
// Records are loaded as copies and written back only through a Batch, which
// a Store applies all at once or not at all.
package store

import (
	"context"
	"errors"

	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
)

var ErrNotFound = errors.New("record not found")

type Kind string

const (
	KindConfig    Kind = "config"
	KindPool      Kind = "pool"
	KindTickArray Kind = "tick_array"
	KindPosition  Kind = "position"
)

type Store interface {
	Config(ctx context.Context, key common.Hash) (pool.Config, error)
	Pool(ctx context.Context, key common.Hash) (pool.Pool, error)
	TickArray(ctx context.Context, key common.Hash) (tick.TickArray, error)
	Position(ctx context.Context, key common.Hash) (position.Position, error)
	// Pools lists every pool ordered by key.
	Pools(ctx context.Context) ([]pool.Pool, error)
	Commit(ctx context.Context, b *Batch) error
}

// Write is one pending change. A nil Value deletes the record.
type Write struct {
	Kind  Kind
	Key   common.Hash
	Value any
}

// Batch collects the writes of one instruction. Later writes to the same
// record replace earlier ones.
type Batch struct {
	writes []Write
	index  map[recordKey]int
}

type recordKey struct {
	kind Kind
	key  common.Hash
}

func NewBatch() *Batch {
	return &Batch{index: make(map[recordKey]int)}
}

func (b *Batch) put(kind Kind, key common.Hash, value any) {
	rk := recordKey{kind, key}
	if i, ok := b.index[rk]; ok {
		b.writes[i].Value = value
		return
	}
	b.index[rk] = len(b.writes)
	b.writes = append(b.writes, Write{Kind: kind, Key: key, Value: value})
}

func (b *Batch) PutConfig(c pool.Config) {
	b.put(KindConfig, c.Key, c)
}

func (b *Batch) PutPool(p pool.Pool) {
	b.put(KindPool, p.Key, p)
}

func (b *Batch) PutTickArray(key common.Hash, ta tick.TickArray) {
	b.put(KindTickArray, key, ta)
}

func (b *Batch) PutPosition(key common.Hash, p position.Position) {
	b.put(KindPosition, key, p)
}

func (b *Batch) DeletePosition(key common.Hash) {
	b.put(KindPosition, key, nil)
}

// Writes returns the pending writes in first-write order.
func (b *Batch) Writes() []Write {
	return b.writes
}

func (b *Batch) Len() int {
	return len(b.writes)
}
