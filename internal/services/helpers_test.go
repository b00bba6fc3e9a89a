package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage/memory"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type change struct {
	collection, op, id string
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []change
	err     error
}

func (n *recordingNotifier) PublishChange(_ context.Context, collection, op, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change{collection, op, id})
	return n.err
}

func (n *recordingNotifier) all() []change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]change(nil), n.changes...)
}

// flakyStore wraps the memory store and fails writes while failing is set.
type flakyStore struct {
	*memory.Store
	mu      sync.Mutex
	failing bool
	getErr  error
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errors.New("quota exceeded")
	}
	return f.Store.Set(ctx, key, value)
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func testOptions(n *recordingNotifier) Options {
	var seq int
	var mu sync.Mutex
	return Options{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Notifier: n,
		Logger:   log.Discard(),
	}
}

func input(typ, amount, description, category, date string) core.TransactionInput {
	return core.TransactionInput{Type: typ, Amount: amount, Description: description, Category: category, Date: date}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
