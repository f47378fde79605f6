// Package history keeps the automatically maintained log of dispatched
// requests: most-recent-first, capped, with the oldest entries evicted on
// overflow. Every attempt that reached the network layer is recorded,
// including failures; validation errors never are.
package history

import (
	"context"
	"time"

	"github.com/avdeev/apilab/internal/core"
	"github.com/avdeev/apilab/internal/storage"
	"github.com/google/uuid"
)

// MaxEntries is the retention cap. On every push only the most recent
// MaxEntries entries survive.
const MaxEntries = 50

// Entry is one dispatched request: the descriptor shape (minus tests) plus
// the outcome summary.
type Entry struct {
	ID          string            `json:"id"`
	Method      core.Method       `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams []core.QueryParam `json:"query_params,omitempty"`
	Body        string            `json:"body,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`

	ExecutedAt time.Time `json:"executed_at"`
	Status     int       `json:"status,omitempty"`
	TimeMillis int64     `json:"time_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// FromDescriptor builds an entry from whatever request data was assembled,
// fresh id included.
func FromDescriptor(r *core.RequestDescriptor) Entry {
	return Entry{
		ID:          uuid.New().String(),
		Method:      r.Method,
		URL:         r.URL,
		Headers:     r.Headers,
		QueryParams: r.QueryParams,
		Body:        r.Body,
		Name:        r.Name,
		Description: r.Description,
		ExecutedAt:  time.Now(),
	}
}

// ToDescriptor rebuilds a descriptor from the entry so a past request can be
// reopened in the editor or exported.
func (e Entry) ToDescriptor() *core.RequestDescriptor {
	name := e.Name
	if name == "" {
		name = string(e.Method) + " " + e.URL
	}
	return &core.RequestDescriptor{
		ID:          e.ID,
		Method:      e.Method,
		URL:         e.URL,
		Headers:     e.Headers,
		QueryParams: e.QueryParams,
		Body:        e.Body,
		Name:        name,
		Description: e.Description,
	}
}

// Store persists the history blob through the shared key-value layer.
type Store struct {
	kv storage.KV
}

// NewStore creates a history store over the given backend.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// List returns the history, most recent first. An absent or corrupt blob
// yields an empty history.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Push prepends an entry and enforces the cap.
func (s *Store) Push(ctx context.Context, entry Entry) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	return storage.SaveJSON(ctx, s.kv, storage.KeyHistory, entries)
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, storage.KeyHistory)
}
