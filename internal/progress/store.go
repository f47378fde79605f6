// Package progress tracks per-lesson task completion flags. It is peripheral
// to the request composer and shares only its storage mechanism: plain
// boolean maps keyed by task id, one map per lesson.
package progress

import (
	"context"

	"github.com/avdeev/apilab/internal/storage"
)

// Store persists completion flags through the shared key-value layer.
type Store struct {
	kv storage.KV
}

// NewStore creates a progress surface over the given backend.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) load(ctx context.Context) (map[string]map[string]bool, error) {
	flags := make(map[string]map[string]bool)
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyProgress, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// SetCompleted flags a task within a lesson.
func (s *Store) SetCompleted(ctx context.Context, lesson, task string, done bool) error {
	flags, err := s.load(ctx)
	if err != nil {
		return err
	}
	if flags[lesson] == nil {
		flags[lesson] = make(map[string]bool)
	}
	if done {
		flags[lesson][task] = true
	} else {
		delete(flags[lesson], task)
		if len(flags[lesson]) == 0 {
			delete(flags, lesson)
		}
	}
	return storage.SaveJSON(ctx, s.kv, storage.KeyProgress, flags)
}

// Completed reports whether a task is flagged.
func (s *Store) Completed(ctx context.Context, lesson, task string) (bool, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return flags[lesson][task], nil
}

// Lesson returns all flagged tasks of a lesson.
func (s *Store) Lesson(ctx context.Context, lesson string) (map[string]bool, error) {
	flags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(flags[lesson]))
	for task, done := range flags[lesson] {
		result[task] = done
	}
	return result, nil
}

// All returns every lesson's flags.
func (s *Store) All(ctx context.Context) (map[string]map[string]bool, error) {
	return s.load(ctx)
}
