// Package storage defines the key-value port every collection is persisted
// through, and the SQLite implementation of it.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Namespaced keys, one per persisted collection.
const (
	KeyTransactions = "pfd_transactions"
	KeyBudgets      = "pfd_budgets"
	KeyGoals        = "pfd_savings_goals"
	KeySettings     = "pfd_settings"
)

// Store is a string-keyed blob store. Get on a missing key returns
// (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into dst. found is false when
// the key is absent; dst is left untouched in that case.
func LoadJSON(ctx context.Context, s Store, key string, dst any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON stores the JSON encoding of v under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
