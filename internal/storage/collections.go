package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/avdeev/apilab/internal/core"
)

// ErrCollectionNotFound is returned when a collection id or name does not
// match any stored collection.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrCollectionExists is returned when creating a collection whose name is
// already taken.
var ErrCollectionExists = errors.New("collection already exists")

// CollectionStore is the typed surface over the collections blob.
type CollectionStore struct {
	kv KV
}

// NewCollectionStore creates a collection surface over the given backend.
func NewCollectionStore(kv KV) *CollectionStore {
	return &CollectionStore{kv: kv}
}

// List returns all stored collections in order. An absent or corrupt blob
// yields an empty list.
func (s *CollectionStore) List(ctx context.Context) ([]*core.Collection, error) {
	var collections []*core.Collection
	if _, err := LoadJSON(ctx, s.kv, KeyCollections, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *CollectionStore) save(ctx context.Context, collections []*core.Collection) error {
	return SaveJSON(ctx, s.kv, KeyCollections, collections)
}

// Create appends a new empty collection with the given name.
func (s *CollectionStore) Create(ctx context.Context, name string) (*core.Collection, error) {
	collections, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range collections {
		if existing.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
		}
	}

	c := core.NewCollection(name)
	collections = append(collections, c)
	if err := s.save(ctx, collections); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the collection matching the given id or, failing that, name.
func (s *CollectionStore) Get(ctx context.Context, idOrName string) (*core.Collection, error) {
	collections, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if c.ID == idOrName {
			return c, nil
		}
	}
	for _, c := range collections {
		if c.Name == idOrName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, idOrName)
}

// Update replaces the stored collection with the same id.
func (s *CollectionStore) Update(ctx context.Context, c *core.Collection) error {
	collections, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, existing := range collections {
		if existing.ID == c.ID {
			collections[i] = c
			return s.save(ctx, collections)
		}
	}
	return fmt.Errorf("%w: %s", ErrCollectionNotFound, c.ID)
}

// Delete removes the collection with the given id. History entries produced
// by its requests are not cascaded; the application owns that consistency.
func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	collections, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, c := range collections {
		if c.ID == id {
			collections = append(collections[:i], collections[i+1:]...)
			return s.save(ctx, collections)
		}
	}
	return fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
}

// AddRequest appends a descriptor to the identified collection.
func (s *CollectionStore) AddRequest(ctx context.Context, idOrName string, r *core.RequestDescriptor) error {
	c, err := s.Get(ctx, idOrName)
	if err != nil {
		return err
	}
	c.AddRequest(r)
	return s.Update(ctx, c)
}

// RemoveRequest deletes a descriptor by id from the identified collection.
func (s *CollectionStore) RemoveRequest(ctx context.Context, idOrName, requestID string) error {
	c, err := s.Get(ctx, idOrName)
	if err != nil {
		return err
	}
	if err := c.RemoveRequest(requestID); err != nil {
		return err
	}
	return s.Update(ctx, c)
}

// FindRequest locates a descriptor by id across all collections.
func (s *CollectionStore) FindRequest(ctx context.Context, requestID string) (*core.RequestDescriptor, *core.Collection, error) {
	collections, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range collections {
		if r, ok := c.FindRequest(requestID); ok {
			return r, c, nil
		}
	}
	return nil, nil, fmt.Errorf("request not found: %s", requestID)
}
