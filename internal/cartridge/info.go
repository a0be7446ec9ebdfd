package cartridge

import (
	"io"
)

// Info is a payload-free summary of a cartridge.
type Info struct {
	Version     uint8    `json:"version"`
	Name        string   `json:"name"`
	Desc        string   `json:"desc"`
	Author      string   `json:"author"`
	CoverSize   int      `json:"cover_size"`
	CodeSize    int      `json:"code_size"`
	FontSize    int      `json:"font_size"`
	PaletteSize int      `json:"palette_size"`
	MapSize     int      `json:"map_size"`
	Chunks      []string `json:"chunks"`
}

// Summary describes c. Chunks lists the chunk types Encode would emit, in
// order, without the End chunk.
func (c *Cartridge) Summary() Info {
	chunks := c.Chunks()
	names := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		names = append(names, ch.Type().String())
	}
	return Info{
		Version:     c.Version,
		Name:        c.Name,
		Desc:        c.Desc,
		Author:      c.Author,
		CoverSize:   len(c.Cover),
		CodeSize:    len(c.Code),
		FontSize:    len(c.Font),
		PaletteSize: len(c.Palette),
		MapSize:     len(c.Map),
		Chunks:      names,
	}
}

// ScanChunks walks the chunk section of the cartridge in r and calls fn
// with every chunk header, End included. Payloads are discarded rather
// than retained. Size rules apply as in Decode; fn errors stop the scan.
func ScanChunks(r io.Reader, fn func(ChunkHeader) error) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}
	skip := int64(1) + int64(h.NameSize) + int64(h.DescSize) + int64(h.AuthorSize)
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return Header{}, ioFailure("skip text fields", err)
	}

	for {
		ch, err := ReadChunkHeader(r)
		if err != nil {
			return Header{}, err
		}
		if err := ValidateChunkSize(ch.Type, int(ch.Size)); err != nil {
			return Header{}, err
		}
		if ch.Size > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(ch.Size)); err != nil {
				return Header{}, ioFailure("skip chunk payload", err)
			}
		}
		if err := fn(ch); err != nil {
			return Header{}, err
		}
		if ch.Type == ChunkEnd {
			return h, nil
		}
	}
}
