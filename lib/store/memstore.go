package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
)

// MemStore is a Store held in memory.
type MemStore struct {
	mu         sync.RWMutex
	configs    map[common.Hash]pool.Config
	pools      map[common.Hash]pool.Pool
	tickArrays map[common.Hash]tick.TickArray
	positions  map[common.Hash]position.Position
}

func NewMemStore() *MemStore {
	return &MemStore{
		configs:    make(map[common.Hash]pool.Config),
		pools:      make(map[common.Hash]pool.Pool),
		tickArrays: make(map[common.Hash]tick.TickArray),
		positions:  make(map[common.Hash]position.Position),
	}
}

func (s *MemStore) Config(_ context.Context, key common.Hash) (pool.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.configs[key]
	if !ok {
		return pool.Config{}, fmt.Errorf("config %s: %w", key, ErrNotFound)
	}
	return c, nil
}

func (s *MemStore) Pool(_ context.Context, key common.Hash) (pool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[key]
	if !ok {
		return pool.Pool{}, fmt.Errorf("pool %s: %w", key, ErrNotFound)
	}
	return p, nil
}

func (s *MemStore) TickArray(_ context.Context, key common.Hash) (tick.TickArray, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ta, ok := s.tickArrays[key]
	if !ok {
		return tick.TickArray{}, fmt.Errorf("tick array %s: %w", key, ErrNotFound)
	}
	return ta, nil
}

func (s *MemStore) Position(_ context.Context, key common.Hash) (position.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[key]
	if !ok {
		return position.Position{}, fmt.Errorf("position %s: %w", key, ErrNotFound)
	}
	return p, nil
}

func (s *MemStore) Pools(_ context.Context) ([]pool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pool.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Cmp(out[j].Key) < 0
	})
	return out, nil
}

// Positions lists the positions of one pool ordered by key.
func (s *MemStore) Positions(_ context.Context, poolKey common.Hash) ([]position.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]common.Hash, 0)
	for k, p := range s.positions {
		if p.Pool == poolKey {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Cmp(keys[j]) < 0
	})
	out := make([]position.Position, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.positions[k])
	}
	return out, nil
}

// Commit checks every write before applying any of them.
func (s *MemStore) Commit(_ context.Context, b *Batch) error {
	for _, w := range b.Writes() {
		if err := checkWrite(w); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range b.Writes() {
		switch w.Kind {
		case KindConfig:
			s.configs[w.Key] = w.Value.(pool.Config)
		case KindPool:
			s.pools[w.Key] = w.Value.(pool.Pool)
		case KindTickArray:
			s.tickArrays[w.Key] = w.Value.(tick.TickArray)
		case KindPosition:
			if w.Value == nil {
				delete(s.positions, w.Key)
			} else {
				s.positions[w.Key] = w.Value.(position.Position)
			}
		}
	}
	return nil
}

func checkWrite(w Write) error {
	var ok bool
	switch w.Kind {
	case KindConfig:
		_, ok = w.Value.(pool.Config)
	case KindPool:
		_, ok = w.Value.(pool.Pool)
	case KindTickArray:
		_, ok = w.Value.(tick.TickArray)
	case KindPosition:
		_, ok = w.Value.(position.Position)
		ok = ok || w.Value == nil
	}
	if !ok {
		return fmt.Errorf("commit %s %s: unexpected value %T", w.Kind, w.Key, w.Value)
	}
	return nil
}
