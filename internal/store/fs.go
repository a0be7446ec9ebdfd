package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Ext is the file extension of stored cartridges.
const Ext = ".cart"

// FS keeps one <name>.cart file per cartridge under root.
type FS struct {
	root string
}

func NewFS(root string) (*FS, error) {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		resolved = filepath.Join("local", "carts")
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("store.fs: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("store.fs: %w", err)
	}
	return &FS{root: abs}, nil
}

// Put writes through a temp file and rename so readers never see a partial
// cartridge.
func (s *FS) Put(name string, data []byte) error {
	p, err := s.resolvePath(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return fmt.Errorf("store.fs: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store.fs: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store.fs: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store.fs: write %s: %w", name, err)
	}
	log.Debug().Str("cart", name).Int("bytes", len(data)).Msg("store.fs put")
	return nil
}

func (s *FS) Get(name string) ([]byte, error) {
	p, err := s.resolvePath(name)
	if err != nil {
		return nil, err
	}
	out, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("store.fs: read %s: %w", name, err)
	}
	return out, nil
}

func (s *FS) Delete(name string) error {
	p, err := s.resolvePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store.fs: delete %s: %w", name, err)
	}
	return nil
}

func (s *FS) List(prefix string) ([]string, error) {
	names := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		base := d.Name()
		if !strings.HasSuffix(base, Ext) {
			return nil
		}
		name := strings.TrimSuffix(base, Ext)
		if ValidateName(name) != nil {
			return nil
		}
		if prefix == "" || strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store.fs: list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FS) Close() error {
	return nil
}

func (s *FS) resolvePath(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(s.root, name+Ext))
	if !isWithin(p, s.root) {
		return "", fmt.Errorf("%w: path escapes root", ErrInvalidName)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
