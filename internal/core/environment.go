package core

import (
	"time"

	"github.com/google/uuid"
)

// Environment is a named variable set selectable at send time. Selecting no
// environment means no substitution occurs.
type Environment struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Variables map[string]string `json:"variables"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewEnvironment creates an empty environment with the given name.
func NewEnvironment(name string) *Environment {
	now := time.Now()
	return &Environment{
		ID:        uuid.New().String(),
		Name:      name,
		Variables: make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetVariable sets a variable value.
func (e *Environment) SetVariable(key, value string) {
	if e.Variables == nil {
		e.Variables = make(map[string]string)
	}
	e.Variables[key] = value
	e.UpdatedAt = time.Now()
}

// DeleteVariable removes a variable.
func (e *Environment) DeleteVariable(key string) {
	delete(e.Variables, key)
	e.UpdatedAt = time.Now()
}
