package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/graphic"
	"github.com/danmuck/tincart/internal/testutil/testlog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeManifest(t *testing.T, dir, palette string) string {
	t.Helper()
	files := map[string][]byte{
		"main.py":   []byte("print('hello')"),
		"cover.bin": bytes.Repeat([]byte{0, 1, 2, 3}, cartridge.CoverSize/4),
		"pal.bin":   {0, 0, 0, 255, 255, 255, 0, 0},
		"manifest.toml": []byte(`
name = "demo"
author = "me"
version = 9
code = "main.py"
cover = "cover.bin"
` + palette + "\n"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "manifest.toml")
}

func TestPackInspectVerifyUnpack(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	manifestPath := writeManifest(t, dir, `palette_file = "pal.bin"`)

	cartPath := filepath.Join(dir, "demo.cart")
	if _, err := run(t, "pack", manifestPath, "-o", cartPath); err != nil {
		t.Fatalf("pack: %v", err)
	}

	out, err := run(t, "inspect", cartPath, "--chunks")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"demo", "245760 bytes", "cover,code,palette", "end"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "inspect", cartPath, "--json")
	if err != nil {
		t.Fatalf("inspect json: %v", err)
	}
	var info cartridge.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if info.Version != 9 || info.PaletteSize != 8 || info.CodeSize != len("print('hello')") {
		t.Fatalf("unexpected info: %+v", info)
	}

	if out, err := run(t, "verify", cartPath); err != nil || !strings.Contains(out, "ok") {
		t.Fatalf("verify: out=%q err=%v", out, err)
	}

	unpacked := filepath.Join(dir, "unpacked")
	if _, err := run(t, "unpack", cartPath, "-d", unpacked); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	repacked := filepath.Join(dir, "repacked.cart")
	if _, err := run(t, "pack", filepath.Join(unpacked, "manifest.toml"), "-o", repacked); err != nil {
		t.Fatalf("repack: %v", err)
	}
	a, _ := os.ReadFile(cartPath)
	b, _ := os.ReadFile(repacked)
	if !bytes.Equal(a, b) {
		t.Fatalf("unpack then pack changed the cartridge bytes")
	}

	coverPath := filepath.Join(dir, "cover.png")
	if _, err := run(t, "cover", cartPath, "-o", coverPath, "--width", "160", "--height", "96"); err != nil {
		t.Fatalf("cover: %v", err)
	}
	f, err := os.Open(coverPath)
	if err != nil {
		t.Fatalf("open cover: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode cover: %v", err)
	}
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 96 {
		t.Fatalf("unexpected cover bounds: %v", img.Bounds())
	}
}

func TestPackRejectsIllegalPalette(t *testing.T) {
	dir := t.TempDir()
	// six bytes is not a legal palette size
	manifestPath := writeManifest(t, dir, `palette = "000000ffffff"`)

	out := filepath.Join(dir, "bad.cart")
	_, err := run(t, "pack", manifestPath, "-o", out)
	var sizeErr *cartridge.InvalidChunkSizeError
	if !errors.As(err, &sizeErr) || sizeErr.Type != cartridge.ChunkPalette {
		t.Fatalf("expected palette size error, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("failed pack should not leave an output file")
	}
}

func TestInspectTile(t *testing.T) {
	cart := cartridge.Default()
	cart.Name = "tiles"
	cart.Map = []byte{0, 0, 5, 1}
	cart.Palette = []byte{0, 0, 0, 255, 255, 255, 0, 0}
	data, err := cart.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tiles.cart")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := run(t, "inspect", path, "--tile", "1,0")
	if err != nil {
		t.Fatalf("inspect tile: %v", err)
	}
	for _, want := range []string{"tile 1,0: glyph=5 color=1 rgb=ffffff", "000000 ffffff"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "inspect", path, "--tile", "1"); err == nil {
		t.Fatalf("expected malformed tile error")
	}
	if _, err := run(t, "inspect", path, "--tile", "400,0"); !errors.Is(err, graphic.ErrInvalidCoord) {
		t.Fatalf("expected ErrInvalidCoord, got %v", err)
	}
}

func TestVerifyDetectsNonCanonicalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.cart")
	wire := []byte{1, 0, 0, 0, 0, 1}
	wire = append(wire, 2, 1, 0, 0, 0, 'a')
	wire = append(wire, 2, 1, 0, 0, 0, 'b')
	wire = append(wire, 0, 0, 0, 0, 0)
	if err := os.WriteFile(path, wire, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "verify", path); !errors.Is(err, errRoundTrip) {
		t.Fatalf("expected round trip mismatch, got %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.cart")
	if err := os.WriteFile(broken, []byte{1, 0, 0, 0, 0, 1, 6, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := run(t, "inspect", broken)
	var typeErr *cartridge.InvalidChunkTypeError
	if !errors.As(err, &typeErr) || typeErr.Type != 6 {
		t.Fatalf("expected InvalidChunkTypeError(6), got %v", err)
	}

	empty := filepath.Join(dir, "empty.cart")
	if err := os.WriteFile(empty, []byte{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	coverPath := filepath.Join(dir, "none.png")
	if _, err := run(t, "cover", empty, "-o", coverPath); err == nil {
		t.Fatalf("expected missing cover error")
	}
	if _, err := os.Stat(coverPath); !os.IsNotExist(err) {
		t.Fatalf("failed cover export should not leave a file")
	}

	if _, err := run(t, "--log-level", "loud", "verify", empty); err == nil {
		t.Fatalf("expected unknown log level error")
	}
	if _, err := run(t, "pack"); err == nil {
		t.Fatalf("expected argument count error")
	}
}
