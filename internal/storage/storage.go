// Package storage is the process-external key-value persistence layer. Each
// surface (collections, environments, history, lesson progress) lives in a
// single JSON blob under a fixed key; every mutation loads the whole blob,
// changes it in memory, and writes it back. There is no locking: concurrent
// writers race silently and the last write wins, which is accepted for a
// single-user tool.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Fixed blob keys, one per surface.
const (
	KeyCollections  = "collections"
	KeyEnvironments = "environments"
	KeySelectedEnv  = "selected_environment"
	KeyHistory      = "history"
	KeyProgress     = "progress"
)

// Common errors
var (
	ErrNotFound    = errors.New("key not found")
	ErrStoreClosed = errors.New("store is closed")
)

// KV is the external key-value store the surfaces are built on. Backends
// must return ErrNotFound for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LoadJSON reads a blob into v. An absent or unparsable blob leaves v
// untouched and reports false with no error: a corrupt surface initializes
// empty rather than failing the user action.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if json.Unmarshal(data, v) != nil {
		return false, nil
	}
	return true, nil
}

// SaveJSON serializes v and stores the whole blob under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, data)
}
