package exporter

import (
	"fmt"
	"time"

	"github.com/avdeev/apilab/internal/core"
	"gopkg.in/yaml.v3"
)

// Storage format for collection files shared between machines. Kept separate
// from the core types so the persisted blob layout can evolve independently.

type collectionYAML struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty"`
	Requests    []requestYAML     `yaml:"requests,omitempty"`
	CreatedAt   time.Time         `yaml:"created_at"`
	UpdatedAt   time.Time         `yaml:"updated_at"`
}

type requestYAML struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Method      string            `yaml:"method"`
	URL         string            `yaml:"url"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	QueryParams []queryParamYAML  `yaml:"query_params,omitempty"`
	Body        string            `yaml:"body,omitempty"`
	Tests       []string          `yaml:"tests,omitempty"`
}

type queryParamYAML struct {
	Key     string `yaml:"key"`
	Value   string `yaml:"value"`
	Enabled bool   `yaml:"enabled"`
}

// MarshalCollection renders a collection as a YAML document.
func MarshalCollection(c *core.Collection) ([]byte, error) {
	data := collectionYAML{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Variables:   c.Variables,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, r := range c.Requests {
		data.Requests = append(data.Requests, toRequestYAML(r))
	}
	return yaml.Marshal(data)
}

// UnmarshalCollection parses a YAML collection document.
func UnmarshalCollection(content []byte) (*core.Collection, error) {
	var data collectionYAML
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse collection file: %w", err)
	}

	c := core.NewCollection(data.Name)
	if data.ID != "" {
		c.ID = data.ID
	}
	c.Description = data.Description
	if data.Variables != nil {
		c.Variables = data.Variables
	}
	if !data.CreatedAt.IsZero() {
		c.CreatedAt = data.CreatedAt
		c.UpdatedAt = data.UpdatedAt
	}
	for _, rd := range data.Requests {
		r, err := fromRequestYAML(rd)
		if err != nil {
			return nil, err
		}
		c.Requests = append(c.Requests, r)
	}
	return c, nil
}

func toRequestYAML(r *core.RequestDescriptor) requestYAML {
	data := requestYAML{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Method:      string(r.Method),
		URL:         r.URL,
		Headers:     r.Headers,
		Body:        r.Body,
		Tests:       r.Tests,
	}
	for _, p := range r.QueryParams {
		data.QueryParams = append(data.QueryParams, queryParamYAML(p))
	}
	return data
}

func fromRequestYAML(data requestYAML) (*core.RequestDescriptor, error) {
	method, err := core.ParseMethod(data.Method)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", data.Name, err)
	}

	r := core.NewRequestDescriptor(method, data.URL)
	if data.ID != "" {
		r.ID = data.ID
	}
	if data.Name != "" {
		r.Name = data.Name
	}
	r.Description = data.Description
	if data.Headers != nil {
		r.Headers = data.Headers
	}
	r.Body = data.Body
	r.Tests = data.Tests
	for _, p := range data.QueryParams {
		r.QueryParams = append(r.QueryParams, core.QueryParam(p))
	}
	return r, nil
}
