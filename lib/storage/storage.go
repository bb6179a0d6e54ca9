package storage

import "github.com/ftchann/yevefi-simulator/lib/result"

// Storage defines a sink for replay output.
type Storage interface {
	PutSnapshots(snapshots []result.Snapshot) error
	PutSummary(summary result.Summary) error
}

// MemoryStorage keeps replay output in memory.
type MemoryStorage struct {
	Snapshots []result.Snapshot
	Summaries []result.Summary
}

func (s *MemoryStorage) PutSnapshots(snapshots []result.Snapshot) error {
	s.Snapshots = append(s.Snapshots, snapshots...)
	return nil
}

func (s *MemoryStorage) PutSummary(summary result.Summary) error {
	s.Summaries = append(s.Summaries, summary)
	return nil
}
