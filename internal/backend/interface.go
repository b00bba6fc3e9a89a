package backend

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CleanupFunc releases what a backend opened.
type CleanupFunc func() error

// BackendResult is a ready storage backend plus its optional change publisher.
type BackendResult struct {
	Store storage.Store
	// Notifier is nil when change events are disabled or the broker was
	// unreachable at startup.
	Notifier services.ChangeNotifier
	// AMQP is the concrete publisher behind Notifier, for consumers.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// sqlite
	SQLiteDBPath string

	// file
	DataDirectory string

	// change events, any backend
	AMQPURL         string
	AMQPExchange    string
	AMQPQueue       string
	AMQPDialTimeout time.Duration
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
