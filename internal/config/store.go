package config

import (
	"fmt"
	"strings"
	"time"
)

type Store struct {
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"POSTGRES"`
	Breaker StoreBreaker
}

type StoreBreaker struct {
	Enabled             bool          `env:"STORE_BREAKER_ENABLED" envDefault:"true"`
	MaxRequests         uint32        `env:"STORE_BREAKER_MAX_REQUESTS" envDefault:"3"`
	Interval            time.Duration `env:"STORE_BREAKER_INTERVAL" envDefault:"60s"`
	Timeout             time.Duration `env:"STORE_BREAKER_TIMEOUT" envDefault:"5s"`
	ConsecutiveFailures uint32        `env:"STORE_BREAKER_CONSECUTIVE_FAILURES" envDefault:"5"`
}

// StoreBackend selects where products and sales are persisted.
type StoreBackend uint8

const (
	StoreBackendPostgres StoreBackend = iota
	StoreBackendMemory
)

// String returns the string representation of the store backend.
func (b StoreBackend) String() string {
	return []string{"POSTGRES", "MEMORY"}[b]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *StoreBackend) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*b = StoreBackendPostgres
	case "MEMORY":
		*b = StoreBackendMemory
	default:
		return fmt.Errorf("unknown store backend: %s", text)
	}
	return nil
}

func (b StoreBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
