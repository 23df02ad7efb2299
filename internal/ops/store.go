package ops

import (
	"context"
	"fmt"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

type statsStore struct {
	db core.DBTX
}

// NewStatsStore returns a StatsStore backed by the primary database.
func NewStatsStore(db core.DBTX) StatsStore {
	return &statsStore{db: db}
}

func (s *statsStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *statsStore) CountNotes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notes`)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}
