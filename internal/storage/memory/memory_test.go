package memory

import (
	"context"
	"testing"

	"fintrack/internal/storage"
)

func TestMemoryStoreGetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	if v, ok, err := s.Get(ctx, storage.KeyBudgets); v != nil || ok || err != nil {
		t.Fatalf("missing key: v=%v ok=%v err=%v", v, ok, err)
	}

	buf := []byte(`[{"category":"Food"}]`)
	if err := s.Set(ctx, storage.KeyBudgets, buf); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[0] = 'X'

	v, ok, err := s.Get(ctx, storage.KeyBudgets)
	if err != nil || !ok || v[0] != '[' {
		t.Fatalf("stored value must not alias the caller's slice: %q ok=%v err=%v", v, ok, err)
	}
	v[0] = 'Y'
	if again, _, _ := s.Get(ctx, storage.KeyBudgets); again[0] != '[' {
		t.Fatalf("returned value must not alias the stored slice")
	}

	if err := s.Remove(ctx, storage.KeyBudgets); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, storage.KeyBudgets); ok {
		t.Fatalf("expected key to be removed")
	}
}

func TestNewWithDataAndJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewWithData(map[string][]byte{storage.KeySettings: []byte(`{"currency":"GBP"}`)})

	var got struct{ Currency string }
	found, err := storage.LoadJSON(ctx, s, storage.KeySettings, &got)
	if err != nil || !found || got.Currency != "GBP" {
		t.Fatalf("unexpected load: %+v found=%v err=%v", got, found, err)
	}

	if err := storage.SaveJSON(ctx, s, storage.KeyGoals, []string{"a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	var goals []string
	if found, err := storage.LoadJSON(ctx, s, storage.KeyGoals, &goals); !found || err != nil || len(goals) != 1 {
		t.Fatalf("unexpected goals %v found=%v err=%v", goals, found, err)
	}

	var none []string
	if found, err := storage.LoadJSON(ctx, s, storage.KeyTransactions, &none); found || err != nil || none != nil {
		t.Fatalf("missing key should report not found")
	}
}
