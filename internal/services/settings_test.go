package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func TestSettingsService_DefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSettingsService(store, testOptions(&recordingNotifier{}))
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if svc.Get() != core.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", svc.Get())
	}

	got, err := svc.Update(ctx, core.Settings{Currency: "eur", ItemsPerPage: 25, TrendMonths: 12})
	if err != nil || got.Currency != "EUR" {
		t.Fatalf("update: %+v err=%v", got, err)
	}

	if _, err := svc.Update(ctx, core.Settings{Currency: "EUR", ItemsPerPage: 0, TrendMonths: 12}); !errors.Is(err, core.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if svc.Get().ItemsPerPage != 25 {
		t.Fatalf("rejected update must not apply")
	}

	reloaded := NewSettingsService(store, testOptions(&recordingNotifier{}))
	reloaded.Load(ctx)
	if reloaded.Get() != got {
		t.Fatalf("settings not persisted: %+v", reloaded.Get())
	}
}

func TestSettingsService_LoadRepairsFields(t *testing.T) {
	store := memory.NewWithData(map[string][]byte{
		storage.KeySettings: []byte(`{"currency":"GBP","itemsPerPage":0}`),
	})
	svc := NewSettingsService(store, testOptions(&recordingNotifier{}))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := core.Settings{Currency: "GBP", ItemsPerPage: core.DefaultItemsPerPage, TrendMonths: core.DefaultTrendMonths}
	if svc.Get() != want {
		t.Fatalf("got %+v, want %+v", svc.Get(), want)
	}
}
