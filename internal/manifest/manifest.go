// Package manifest maps a TOML cartridge description plus its asset files
// to a cartridge and back.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/graphic"
)

// FileName is the manifest name Unpack writes.
const FileName = "manifest.toml"

// Asset file names Unpack writes next to the manifest.
const (
	CodeFile  = "main.code"
	CoverFile = "cover.bin"
	FontFile  = "font.bin"
	MapFile   = "map.bin"
)

var ErrPaletteConflict = errors.New("manifest: palette and palette_file are mutually exclusive")

// File is the manifest.toml key mapping. Asset paths are relative to the
// manifest directory.
type File struct {
	Name        string   `toml:"name"`
	Desc        string   `toml:"desc,omitempty"`
	Author      string   `toml:"author,omitempty"`
	Version     int      `toml:"version"`
	Code        string   `toml:"code,omitempty"`
	Cover       string   `toml:"cover,omitempty"`
	Font        string   `toml:"font,omitempty"`
	Map         string   `toml:"map,omitempty"`
	Palette     string   `toml:"palette,omitempty"`
	PaletteFile string   `toml:"palette_file,omitempty"`
}

// Load reads the manifest at path and the assets it names, and returns a
// validated cartridge.
func Load(path string) (*cartridge.Cartridge, error) {
	var raw File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load manifest: unknown key %q", undecoded[0].String())
	}

	cart := cartridge.Default()
	cart.Name = raw.Name
	cart.Desc = raw.Desc
	cart.Author = raw.Author
	if meta.IsDefined("version") {
		if raw.Version < 0 || raw.Version > 0xFF {
			return nil, fmt.Errorf("load manifest: version %d out of range 0..255", raw.Version)
		}
		cart.Version = uint8(raw.Version)
	}

	dir := filepath.Dir(path)
	if raw.Code != "" {
		code, err := readAsset(dir, raw.Code)
		if err != nil {
			return nil, err
		}
		cart.Code = string(code)
	}
	if cart.Cover, err = readOptional(dir, raw.Cover); err != nil {
		return nil, err
	}
	if cart.Font, err = readOptional(dir, raw.Font); err != nil {
		return nil, err
	}
	if cart.Map, err = readOptional(dir, raw.Map); err != nil {
		return nil, err
	}

	switch {
	case strings.TrimSpace(raw.Palette) != "" && raw.PaletteFile != "":
		return nil, ErrPaletteConflict
	case strings.TrimSpace(raw.Palette) != "":
		if cart.Palette, err = graphic.ParsePaletteHex(raw.Palette); err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
	default:
		if cart.Palette, err = readOptional(dir, raw.PaletteFile); err != nil {
			return nil, err
		}
	}

	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return &cart, nil
}

// Unpack writes cart as a manifest plus asset files under dir. Only present
// payloads get a file; the palette is inlined as a hex string. It returns
// the manifest path.
func Unpack(cart *cartridge.Cartridge, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unpack: %w", err)
	}

	out := File{
		Name:    cart.Name,
		Desc:    cart.Desc,
		Author:  cart.Author,
		Version: int(cart.Version),
		Palette: graphic.PaletteHex(cart.Palette),
	}
	assets := []struct {
		name string
		data []byte
		ref  *string
	}{
		{CodeFile, []byte(cart.Code), &out.Code},
		{CoverFile, cart.Cover, &out.Cover},
		{FontFile, cart.Font, &out.Font},
		{MapFile, cart.Map, &out.Map},
	}
	for _, a := range assets {
		if len(a.data) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, a.name), a.data, 0o644); err != nil {
			return "", fmt.Errorf("unpack %s: %w", a.name, err)
		}
		*a.ref = a.name
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unpack: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(out); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("unpack: encode manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("unpack: %w", err)
	}
	return path, nil
}

func readOptional(dir, rel string) ([]byte, error) {
	if strings.TrimSpace(rel) == "" {
		return nil, nil
	}
	return readAsset(dir, rel)
}

func readAsset(dir, rel string) ([]byte, error) {
	p := strings.TrimSpace(rel)
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("load manifest asset %q: %w", rel, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
