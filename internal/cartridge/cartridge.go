package cartridge

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultVersion is the game version of a fresh cartridge.
const DefaultVersion uint8 = 1

// Text field ceilings imposed by the header size fields.
const (
	MaxNameSize   = 0xFF
	MaxDescSize   = 0xFFFF
	MaxAuthorSize = 0xFF
)

// Cartridge is a decoded game bundle. Empty payload fields are absent and
// are not written.
//
// Version is the game's own version. The container format version lives in
// Header.CartVersion and is always DefaultCartVersion on write.
type Cartridge struct {
	Version uint8
	Name    string
	Desc    string
	Author  string
	Cover   []byte
	Font    []byte
	Palette []byte
	Map     []byte
	Code    string
}

func Default() Cartridge {
	return Cartridge{Version: DefaultVersion}
}

// Equal compares every field. Nil and empty payloads are equal.
func (c *Cartridge) Equal(o *Cartridge) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Version == o.Version &&
		c.Name == o.Name &&
		c.Desc == o.Desc &&
		c.Author == o.Author &&
		c.Code == o.Code &&
		bytes.Equal(c.Cover, o.Cover) &&
		bytes.Equal(c.Font, o.Font) &&
		bytes.Equal(c.Palette, o.Palette) &&
		bytes.Equal(c.Map, o.Map)
}

// Chunks returns the payload chunks in emission order: cover, code, font,
// palette, map. Empty fields are skipped and the End chunk is not included.
func (c *Cartridge) Chunks() []Chunk {
	fields := []struct {
		t    ChunkType
		data []byte
	}{
		{ChunkCover, c.Cover},
		{ChunkCode, []byte(c.Code)},
		{ChunkFont, c.Font},
		{ChunkPalette, c.Palette},
		{ChunkMap, c.Map},
	}
	out := make([]Chunk, 0, len(fields))
	for _, f := range fields {
		if len(f.data) == 0 {
			continue
		}
		out = append(out, NewChunk(f.t, f.data))
	}
	return out
}

// header computes the wire header from the actual text field lengths.
func (c *Cartridge) header() (Header, error) {
	texts := []struct {
		field string
		value string
		max   int
	}{
		{"name", c.Name, MaxNameSize},
		{"desc", c.Desc, MaxDescSize},
		{"author", c.Author, MaxAuthorSize},
	}
	for _, t := range texts {
		if len(t.value) > t.max {
			return Header{}, &StringTooLongError{Field: t.field, Size: len(t.value), Max: t.max}
		}
		if !utf8.ValidString(t.value) {
			return Header{}, fmt.Errorf("%w in %s", ErrInvalidUTF8, t.field)
		}
	}

	h := DefaultHeader()
	h.NameSize = uint8(len(c.Name))
	h.DescSize = uint16(len(c.Desc))
	h.AuthorSize = uint8(len(c.Author))
	return h, nil
}

// Validate runs every check Encode performs without producing output.
func (c *Cartridge) Validate() error {
	_, _, err := c.plan()
	return err
}

func (c *Cartridge) plan() (Header, []Chunk, error) {
	h, err := c.header()
	if err != nil {
		return Header{}, nil, err
	}
	if !utf8.ValidString(c.Code) {
		return Header{}, nil, fmt.Errorf("%w in code", ErrInvalidUTF8)
	}
	chunks := c.Chunks()
	for _, ch := range chunks {
		if err := ch.Validate(); err != nil {
			return Header{}, nil, err
		}
	}
	return h, chunks, nil
}

// Encode returns the wire form of c.
func (c *Cartridge) Encode() ([]byte, error) {
	h, chunks, err := c.plan()
	if err != nil {
		return nil, err
	}

	size := HeaderLen + 1 + len(c.Name) + len(c.Desc) + len(c.Author) + ChunkHeaderLen
	for _, ch := range chunks {
		size += ch.EncodedLen()
	}

	buf := make([]byte, 0, size)
	buf = append(buf, EncodeHeader(h)...)
	buf = append(buf, c.Version)
	buf = append(buf, c.Name...)
	buf = append(buf, c.Desc...)
	buf = append(buf, c.Author...)
	for _, ch := range chunks {
		buf = appendChunk(buf, ch)
	}
	buf = appendChunk(buf, Chunk{})
	return buf, nil
}

// WriteTo encodes c into w. An invalid cartridge writes nothing.
func (c *Cartridge) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), ioFailure("write cartridge", err)
	}
	return int64(n), nil
}

// Decode reads one cartridge from r. Reading stops right after the End
// chunk; a stream without one fails with an IOError.
func Decode(r io.Reader) (*Cartridge, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, ioFailure("read version", err)
	}

	cart := &Cartridge{Version: version[0]}
	if cart.Name, err = readText(r, int(h.NameSize), "name"); err != nil {
		return nil, err
	}
	if cart.Desc, err = readText(r, int(h.DescSize), "desc"); err != nil {
		return nil, err
	}
	if cart.Author, err = readText(r, int(h.AuthorSize), "author"); err != nil {
		return nil, err
	}

	for {
		ch, err := ReadChunk(r)
		if err != nil {
			return nil, err
		}
		switch ch.Type() {
		case ChunkEnd:
			return cart, nil
		case ChunkCover:
			cart.Cover = ch.Data
		case ChunkCode:
			if !utf8.Valid(ch.Data) {
				return nil, fmt.Errorf("%w in code", ErrInvalidUTF8)
			}
			cart.Code = string(ch.Data)
		case ChunkFont:
			cart.Font = ch.Data
		case ChunkPalette:
			cart.Palette = ch.Data
		case ChunkMap:
			cart.Map = ch.Data
		}
	}
}

func DecodeBytes(b []byte) (*Cartridge, error) {
	return Decode(bytes.NewReader(b))
}

func readText(r io.Reader, size int, field string) (string, error) {
	if size == 0 {
		return "", nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ioFailure("read "+field, err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w in %s", ErrInvalidUTF8, field)
	}
	return string(buf), nil
}
