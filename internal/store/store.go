// Package store persists encoded cartridges by name.
//
// Ownership boundary:
// - cartridge name rules
// - filesystem and bbolt backends
package store

import (
	"errors"
	"fmt"

	"github.com/danmuck/tincart/internal/config"
)

var (
	ErrNotFound    = errors.New("store: cartridge not found")
	ErrInvalidName = errors.New("store: invalid cartridge name")
)

// MaxNameLen bounds cartridge names.
const MaxNameLen = 128

// Store holds encoded cartridges. Implementations are safe for concurrent use.
type Store interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	// Delete is idempotent.
	Delete(name string) error
	// List returns sorted names that start with prefix.
	List(prefix string) ([]string, error)
	Close() error
}

// Open builds the backend cfg selects.
func Open(cfg config.StoreConfig) (Store, error) {
	if err := config.ValidateStoreConfig(cfg); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	switch cfg.Backend {
	case config.BackendBolt:
		return OpenBolt(cfg.Path)
	default:
		return NewFS(cfg.Path)
	}
}

// ValidateName accepts [A-Za-z0-9._-] names without a leading dot.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLen || name[0] == '.' {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
