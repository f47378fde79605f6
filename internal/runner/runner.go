// Package runner orchestrates one send: resolve variables, assemble the
// request, dispatch it, normalize the response, and append the attempt to
// history. State lives in an explicit Session value with persistence
// injected, not in ambient globals.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/avdeev/apilab/internal/core"
	"github.com/avdeev/apilab/internal/history"
	"github.com/avdeev/apilab/internal/interpolate"
	httpclient "github.com/avdeev/apilab/internal/protocol/http"
	"github.com/avdeev/apilab/internal/storage"
)

// ErrBusy is returned when a send is initiated while a prior send from the
// same session is still in flight. Responses within one session are
// therefore strictly ordered.
var ErrBusy = errors.New("a request is already in flight")

// Session is one editor instance: it resolves against the selected
// environment, dispatches through its client, and records attempts in
// history. Independent sessions share nothing but the persistence layer.
type Session struct {
	mu   sync.Mutex
	busy bool

	client       *httpclient.Client
	history      *history.Store
	environments *storage.EnvironmentStore
	collections  *storage.CollectionStore
	baseOrigin   string
	extraVars    map[string]string
}

// Option configures a Session.
type Option func(*Session)

// WithClient replaces the default dispatcher.
func WithClient(client *httpclient.Client) Option {
	return func(s *Session) {
		s.client = client
	}
}

// WithHistory enables history recording.
func WithHistory(store *history.Store) Option {
	return func(s *Session) {
		s.history = store
	}
}

// WithEnvironments enables environment variable resolution from the
// selected environment.
func WithEnvironments(store *storage.EnvironmentStore) Option {
	return func(s *Session) {
		s.environments = store
	}
}

// WithCollections enables collection-scoped variables for saved requests.
func WithCollections(store *storage.CollectionStore) Option {
	return func(s *Session) {
		s.collections = store
	}
}

// WithVars adds ad-hoc variables that override both collection and
// environment variables.
func WithVars(vars map[string]string) Option {
	return func(s *Session) {
		s.extraVars = vars
	}
}

// WithBaseOrigin sets the origin relative URLs resolve against.
func WithBaseOrigin(origin string) Option {
	return func(s *Session) {
		s.baseOrigin = origin
	}
}

// NewSession creates a session with a default dispatcher.
func NewSession(opts ...Option) *Session {
	s := &Session{
		client: httpclient.NewClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vars returns the merged variable set the next send would resolve with:
// collection variables of the request's owning collection, overridden by the
// selected environment.
func (s *Session) Vars(ctx context.Context, r *core.RequestDescriptor) (map[string]string, error) {
	var layers []map[string]string

	if s.collections != nil {
		if _, owner, err := s.collections.FindRequest(ctx, r.ID); err == nil && owner != nil {
			layers = append(layers, owner.Variables)
		}
	}
	if s.environments != nil {
		selected, err := s.environments.Selected(ctx)
		if err != nil {
			return nil, err
		}
		if selected != nil {
			layers = append(layers, selected.Variables)
		}
	}
	if len(s.extraVars) > 0 {
		layers = append(layers, s.extraVars)
	}

	if len(layers) == 0 {
		return nil, nil
	}
	return interpolate.Merge(layers...), nil
}

// Send executes one dispatch for the descriptor. Validation errors (blank
// URL) return before anything touches the network and leave no history
// entry. Any attempt that reaches the network layer is recorded, success or
// failure. Transport and decode failures surface as a single error.
func (s *Session) Send(ctx context.Context, r *core.RequestDescriptor) (*core.ResponseRecord, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	vars, err := s.Vars(ctx, r)
	if err != nil {
		return nil, err
	}

	assembled, err := core.Assemble(r, vars, s.baseOrigin)
	if err != nil {
		return nil, err
	}

	entry := history.FromDescriptor(r)

	raw, err := s.client.Send(ctx, assembled)
	if err != nil {
		entry.Error = err.Error()
		s.record(ctx, entry)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	record, err := core.Normalize(raw.Status, raw.StatusText, raw.Headers, raw.Body, raw.Elapsed)
	if err != nil {
		entry.Status = raw.Status
		entry.TimeMillis = raw.Elapsed.Milliseconds()
		entry.Error = err.Error()
		s.record(ctx, entry)
		return nil, err
	}

	entry.Status = record.Status
	entry.TimeMillis = record.Time
	s.record(ctx, entry)
	return record, nil
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// record appends to history best-effort: a failed write never fails the
// send that produced it.
func (s *Session) record(ctx context.Context, entry history.Entry) {
	if s.history == nil {
		return
	}
	_ = s.history.Push(ctx, entry)
}
