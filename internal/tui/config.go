package tui

import (
	"encoding/json"
	"fmt"

	"github.com/zarlcorp/core/pkg/zstore"
)

const preferencesKey = "preferences"

// configEnvelope wraps a JSON-encoded config value so heterogeneous config
// types share a single zstore collection.
type configEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Preferences are remembered between runs.
type Preferences struct {
	LastEmail  string `json:"last_email"`
	HideAmount bool   `json:"hide_amount"`
}

// loadConfig reads a typed config from the envelope collection. Missing or
// unreadable entries yield the zero value.
func loadConfig[T any](col *zstore.Collection[configEnvelope], key string) T {
	var zero T
	if col == nil {
		return zero
	}

	env, err := col.Get(key)
	if err != nil {
		return zero
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero
	}
	return v
}

// saveConfig persists a typed config into the envelope collection.
func saveConfig[T any](col *zstore.Collection[configEnvelope], key string, v T) error {
	if col == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return col.Put(key, configEnvelope{Data: data})
}
