// Package storage provides the keyed persistent backends that history
// sequences are written through to.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Backend is a string key/value store. Get reports ok=false with a nil error
// for an absent key.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Keys lists stored keys that start with prefix.
	Keys(prefix string) ([]string, error)
	Close() error
}

// ErrQuotaExceeded is returned by a quota-limited backend when a write would
// grow it past its limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend names accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Kind string
	// Path is the directory for file storage or the database file for sqlite.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// TTL expires redis keys; zero keeps them forever.
	TTL time.Duration
	// Timeout bounds each redis round trip.
	Timeout time.Duration

	// Quota limits the in-memory backend to this many bytes of keys plus values.
	Quota int

	Logger *slog.Logger
}

// Open creates the backend named by opts.Kind. An empty kind selects file storage.
func Open(opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch strings.ToLower(opts.Kind) {
	case "", KindFile:
		if opts.Path == "" {
			return nil, errors.New("file storage requires a path")
		}
		return NewFileStore(opts.Path, logger)
	case KindSQLite:
		if opts.Path == "" {
			return nil, errors.New("sqlite storage requires a path")
		}
		return NewSQLiteStore(opts.Path)
	case KindRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.TTL, opts.Timeout)
	case KindMemory:
		return NewMemoryStore(opts.Quota), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
}
