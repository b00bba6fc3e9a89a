package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SettingsService holds the single settings record.
type SettingsService struct {
	mu      sync.RWMutex
	current core.Settings
	persist *persister
}

func NewSettingsService(store storage.Store, opts Options) *SettingsService {
	opts = opts.withDefaults()
	return &SettingsService{
		current: core.DefaultSettings(),
		persist: newPersister(store, storage.KeySettings, CollectionSettings, opts),
	}
}

// Load reads stored settings. Missing or invalid values fall back to the
// defaults field by field.
func (s *SettingsService) Load(ctx context.Context) error {
	stored := core.DefaultSettings()
	if _, err := s.persist.load(ctx, &stored); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	def := core.DefaultSettings()
	if len(strings.TrimSpace(stored.Currency)) != 3 {
		stored.Currency = def.Currency
	}
	if stored.ItemsPerPage < 1 || stored.ItemsPerPage > 100 {
		stored.ItemsPerPage = def.ItemsPerPage
	}
	if stored.TrendMonths < 1 || stored.TrendMonths > 24 {
		stored.TrendMonths = def.TrendMonths
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()
	return nil
}

func (s *SettingsService) Get() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Update(ctx context.Context, next core.Settings) (core.Settings, error) {
	next.Currency = strings.ToUpper(strings.TrimSpace(next.Currency))
	if err := next.Validate(); err != nil {
		return s.Get(), err
	}

	s.mu.Lock()
	s.current = next
	s.persist.save(ctx, next)
	s.mu.Unlock()

	s.persist.notify(ctx, OpUpdated, "")
	return next, nil
}

func (s *SettingsService) Revision() uint64 {
	return s.persist.revision.Load()
}

func (s *SettingsService) LastPersistError() error {
	return s.persist.err()
}
