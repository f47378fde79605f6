// Package core holds the request composer's data model: saved request
// descriptors, collections, environments, and the normalized response
// record, together with the logic that turns an edited descriptor into a
// dispatch-ready request.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/avdeev/apilab/internal/interpolate"
	"github.com/google/uuid"
)

// Method is an HTTP method supported by the composer.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists the supported methods in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod validates a user-supplied method string.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method: %s", s)
}

// ErrEmptyURL is returned when a send is attempted with a blank URL field.
// It is a validation error: the request is never dispatched and never
// recorded in history.
var ErrEmptyURL = errors.New("request URL is empty")

// QueryParam is one editable query parameter row. Disabled rows and rows
// with an empty key are kept in the descriptor but excluded from the
// assembled URL. Duplicate keys are allowed and applied in order.
type QueryParam struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// RequestDescriptor is a saved, reusable HTTP request definition. The URL,
// header values, and body may contain {{variable}} placeholders resolved at
// send time. Tests are stored verbatim and never executed.
type RequestDescriptor struct {
	ID          string            `json:"id"`
	Method      Method            `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams []QueryParam      `json:"query_params,omitempty"`
	Body        string            `json:"body,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tests       []string          `json:"tests,omitempty"`
}

// NewRequestDescriptor creates a descriptor with a fresh ID and the default
// "METHOD URL" display name.
func NewRequestDescriptor(method Method, rawURL string) *RequestDescriptor {
	return &RequestDescriptor{
		ID:      uuid.New().String(),
		Method:  method,
		URL:     rawURL,
		Headers: make(map[string]string),
		Name:    fmt.Sprintf("%s %s", method, rawURL),
	}
}

// Clone returns a deep copy of the descriptor with the same ID.
func (r *RequestDescriptor) Clone() *RequestDescriptor {
	clone := *r
	clone.Headers = make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		clone.Headers[k] = v
	}
	clone.QueryParams = append([]QueryParam(nil), r.QueryParams...)
	clone.Tests = append([]string(nil), r.Tests...)
	return &clone
}

// SetHeader sets a header value. Keys are stored literally, without
// case folding.
func (r *RequestDescriptor) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// AddQueryParam appends an enabled query parameter row.
func (r *RequestDescriptor) AddQueryParam(key, value string) {
	r.QueryParams = append(r.QueryParams, QueryParam{Key: key, Value: value, Enabled: true})
}

// Assembled is a fully-specified, dispatch-ready request: resolved absolute
// URL, merged headers, and the effective payload.
type Assembled struct {
	Method  Method
	URL     string
	Headers map[string]string
	Body    string
}

// HasBody reports whether the request carries a payload. GET requests never
// do, regardless of the descriptor's body field.
func (a *Assembled) HasBody() bool {
	return a.Body != ""
}

// Assemble resolves the descriptor against the given variables and produces
// a dispatch-ready request:
//
//   - {{variable}} placeholders in the URL, header values, and body are
//     substituted (a nil map leaves them untouched),
//   - enabled query parameters with a non-empty key are percent-encoded and
//     appended to the URL,
//   - a relative URL is resolved against baseOrigin,
//   - Content-Type defaults to application/json unless the descriptor sets
//     it explicitly,
//   - the body is attached only for non-GET methods with non-blank content.
//
// Returns ErrEmptyURL without assembling when the URL field is blank.
func Assemble(r *RequestDescriptor, vars map[string]string, baseOrigin string) (*Assembled, error) {
	if strings.TrimSpace(r.URL) == "" {
		return nil, ErrEmptyURL
	}

	resolved := interpolate.Resolve(r.URL, vars)
	full := BuildURL(resolved, r.QueryParams, baseOrigin)

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range r.Headers {
		headers[k] = interpolate.Resolve(v, vars)
	}

	body := ""
	if r.Method != MethodGet && strings.TrimSpace(r.Body) != "" {
		body = interpolate.Resolve(r.Body, vars)
	}

	return &Assembled{
		Method:  r.Method,
		URL:     full,
		Headers: headers,
		Body:    body,
	}, nil
}

// BuildURL appends the enabled query parameters to rawURL and resolves a
// relative URL against baseOrigin. Parameters are applied in order; rows
// that are disabled or have an empty key are skipped.
func BuildURL(rawURL string, params []QueryParam, baseOrigin string) string {
	result := Absolutize(rawURL, baseOrigin)

	var pairs []string
	for _, p := range params {
		if !p.Enabled || p.Key == "" {
			continue
		}
		pairs = append(pairs, escapeComponent(p.Key)+"="+escapeComponent(p.Value))
	}
	if len(pairs) == 0 {
		return result
	}

	sep := "?"
	if strings.Contains(result, "?") {
		sep = "&"
	}
	return result + sep + strings.Join(pairs, "&")
}

// Absolutize resolves a URL that does not start with "http" against the
// configured origin. Absolute URLs pass through unchanged.
func Absolutize(rawURL, baseOrigin string) string {
	if strings.HasPrefix(rawURL, "http") || baseOrigin == "" {
		return rawURL
	}
	origin := strings.TrimSuffix(baseOrigin, "/")
	if !strings.HasPrefix(rawURL, "/") {
		return origin + "/" + rawURL
	}
	return origin + rawURL
}

// escapeComponent mirrors the browser's encodeURIComponent: like
// url.QueryEscape but with spaces as %20 rather than '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
