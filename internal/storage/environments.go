package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/avdeev/apilab/internal/core"
)

// ErrEnvironmentNotFound is returned when an environment id or name does not
// match any stored environment.
var ErrEnvironmentNotFound = errors.New("environment not found")

// ErrEnvironmentExists is returned when creating an environment whose name is
// already taken.
var ErrEnvironmentExists = errors.New("environment already exists")

// EnvironmentStore is the typed surface over the environments blob. It also
// tracks which environment is currently selected for substitution; selecting
// none means sends go out with placeholders untouched.
type EnvironmentStore struct {
	kv KV
}

// NewEnvironmentStore creates an environment surface over the given backend.
func NewEnvironmentStore(kv KV) *EnvironmentStore {
	return &EnvironmentStore{kv: kv}
}

// List returns all stored environments in order.
func (s *EnvironmentStore) List(ctx context.Context) ([]*core.Environment, error) {
	var environments []*core.Environment
	if _, err := LoadJSON(ctx, s.kv, KeyEnvironments, &environments); err != nil {
		return nil, err
	}
	return environments, nil
}

func (s *EnvironmentStore) save(ctx context.Context, environments []*core.Environment) error {
	return SaveJSON(ctx, s.kv, KeyEnvironments, environments)
}

// Create appends a new empty environment with the given name.
func (s *EnvironmentStore) Create(ctx context.Context, name string) (*core.Environment, error) {
	environments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range environments {
		if existing.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentExists, name)
		}
	}

	e := core.NewEnvironment(name)
	environments = append(environments, e)
	if err := s.save(ctx, environments); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the environment matching the given id or, failing that, name.
func (s *EnvironmentStore) Get(ctx context.Context, idOrName string) (*core.Environment, error) {
	environments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range environments {
		if e.ID == idOrName {
			return e, nil
		}
	}
	for _, e := range environments {
		if e.Name == idOrName {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, idOrName)
}

// Update replaces the stored environment with the same id.
func (s *EnvironmentStore) Update(ctx context.Context, e *core.Environment) error {
	environments, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, existing := range environments {
		if existing.ID == e.ID {
			environments[i] = e
			return s.save(ctx, environments)
		}
	}
	return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, e.ID)
}

// Delete removes the environment with the given id. Deleting the selected
// environment clears the selection.
func (s *EnvironmentStore) Delete(ctx context.Context, id string) error {
	environments, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, e := range environments {
		if e.ID == id {
			environments = append(environments[:i], environments[i+1:]...)
			if err := s.save(ctx, environments); err != nil {
				return err
			}
			if selectedID, _ := s.selectedID(ctx); selectedID == id {
				return s.kv.Delete(ctx, KeySelectedEnv)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, id)
}

// Select marks the environment with the given id or name as current.
func (s *EnvironmentStore) Select(ctx context.Context, idOrName string) (*core.Environment, error) {
	e, err := s.Get(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, KeySelectedEnv, []byte(e.ID)); err != nil {
		return nil, err
	}
	return e, nil
}

// ClearSelection deselects any current environment.
func (s *EnvironmentStore) ClearSelection(ctx context.Context) error {
	return s.kv.Delete(ctx, KeySelectedEnv)
}

// Selected returns the currently selected environment, or nil when none is
// selected or the selection points at a deleted environment.
func (s *EnvironmentStore) Selected(ctx context.Context) (*core.Environment, error) {
	id, err := s.selectedID(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	environments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range environments {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (s *EnvironmentStore) selectedID(ctx context.Context) (string, error) {
	data, err := s.kv.Get(ctx, KeySelectedEnv)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
