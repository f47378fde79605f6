package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRequestNotFound is returned when a request id does not exist in the
// collection it was addressed through.
var ErrRequestNotFound = errors.New("request not found in collection")

// Collection is a named, ordered group of request descriptors plus
// collection-scoped variables. A descriptor belongs to exactly one
// collection at a time.
type Collection struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Variables   map[string]string    `json:"variables,omitempty"`
	Requests    []*RequestDescriptor `json:"requests"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewCollection creates an empty collection with the given name.
func NewCollection(name string) *Collection {
	now := time.Now()
	return &Collection{
		ID:        uuid.New().String(),
		Name:      name,
		Variables: make(map[string]string),
		Requests:  make([]*RequestDescriptor, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Collection) touch() {
	c.UpdatedAt = time.Now()
}

// AddRequest appends a descriptor to the collection.
func (c *Collection) AddRequest(r *RequestDescriptor) {
	c.Requests = append(c.Requests, r)
	c.touch()
}

// FindRequest returns the descriptor with the given id.
func (c *Collection) FindRequest(id string) (*RequestDescriptor, bool) {
	for _, r := range c.Requests {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// RemoveRequest deletes the descriptor with the given id, preserving the
// order of the remaining requests.
func (c *Collection) RemoveRequest(id string) error {
	for i, r := range c.Requests {
		if r.ID == id {
			c.Requests = append(c.Requests[:i], c.Requests[i+1:]...)
			c.touch()
			return nil
		}
	}
	return ErrRequestNotFound
}

// ReplaceRequest swaps the stored descriptor with the same id for the given
// one (edit-then-resave).
func (c *Collection) ReplaceRequest(r *RequestDescriptor) error {
	for i, existing := range c.Requests {
		if existing.ID == r.ID {
			c.Requests[i] = r
			c.touch()
			return nil
		}
	}
	return ErrRequestNotFound
}

// SetVariable sets a collection-scoped variable.
func (c *Collection) SetVariable(key, value string) {
	if c.Variables == nil {
		c.Variables = make(map[string]string)
	}
	c.Variables[key] = value
	c.touch()
}

// DeleteVariable removes a collection-scoped variable.
func (c *Collection) DeleteVariable(key string) {
	delete(c.Variables, key)
	c.touch()
}
