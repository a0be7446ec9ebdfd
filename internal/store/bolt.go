package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

var cartsBucket = []byte("carts")

// Bolt keeps every cartridge in one bbolt file.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the database at path with 0o600 rights.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store.bolt: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store.bolt: can't open bbolt at %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store.bolt: can't create carts bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Put(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cartsBucket).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("store.bolt: put %s: %w", name, err)
	}
	log.Debug().Str("cart", name).Int("bytes", len(data)).Msg("store.bolt put")
	return nil
}

func (s *Bolt) Get(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(cartsBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		// v is only valid inside the transaction
		out = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Bolt) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cartsBucket).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("store.bolt: delete %s: %w", name, err)
	}
	return nil
}

func (s *Bolt) List(prefix string) ([]string, error) {
	names := make([]string, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(cartsBucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store.bolt: list: %w", err)
	}
	return names, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}
