package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ChunkHeaderLen is the fixed wire size of a chunk header.
const ChunkHeaderLen = 5

// Payload sizes of the fixed and variable size chunk types.
const (
	CoverSize   = 245760
	FontSize    = 16384
	MaxCodeSize = 131072
	MaxMapSize  = 122880
)

// ChunkType tags the payload of one chunk. The numeric values are part of
// the wire format.
type ChunkType uint8

const (
	ChunkEnd     ChunkType = 0
	ChunkCover   ChunkType = 1
	ChunkCode    ChunkType = 2
	ChunkFont    ChunkType = 3
	ChunkPalette ChunkType = 4
	ChunkMap     ChunkType = 5
)

// ParseChunkType maps a wire tag to a ChunkType.
func ParseChunkType(b byte) (ChunkType, error) {
	t := ChunkType(b)
	if _, ok := sizeRules[t]; !ok {
		return 0, &InvalidChunkTypeError{Type: b}
	}
	return t, nil
}

func (t ChunkType) String() string {
	switch t {
	case ChunkEnd:
		return "end"
	case ChunkCover:
		return "cover"
	case ChunkCode:
		return "code"
	case ChunkFont:
		return "font"
	case ChunkPalette:
		return "palette"
	case ChunkMap:
		return "map"
	default:
		return fmt.Sprintf("chunk(%d)", uint8(t))
	}
}

// sizeRule is either a closed set of legal sizes or an inclusive ceiling.
type sizeRule struct {
	allowed []int
	max     int
}

// sizeRules is the only source of chunk size legality. Encode and decode
// both go through it.
var sizeRules = map[ChunkType]sizeRule{
	ChunkEnd:     {allowed: []int{0}},
	ChunkCover:   {allowed: []int{0, CoverSize}},
	ChunkCode:    {max: MaxCodeSize},
	ChunkFont:    {allowed: []int{0, FontSize}},
	ChunkPalette: {allowed: []int{0, 4, 8, 16}},
	ChunkMap:     {max: MaxMapSize},
}

func (r sizeRule) check(t ChunkType, size int) error {
	if r.allowed == nil {
		if size < 0 || size > r.max {
			return &InvalidChunkMaxSizeError{Type: t, Size: size, Max: r.max}
		}
		return nil
	}
	for _, n := range r.allowed {
		if n == size {
			return nil
		}
	}
	allowed := make([]int, len(r.allowed))
	copy(allowed, r.allowed)
	return &InvalidChunkSizeError{Type: t, Size: size, Allowed: allowed}
}

// limit is the largest size the rule accepts.
func (r sizeRule) limit() int {
	if r.allowed == nil {
		return r.max
	}
	out := 0
	for _, n := range r.allowed {
		if n > out {
			out = n
		}
	}
	return out
}

// ValidateChunkSize checks size against the legal sizes of t.
func ValidateChunkSize(t ChunkType, size int) error {
	rule, ok := sizeRules[t]
	if !ok {
		return &InvalidChunkTypeError{Type: byte(t)}
	}
	return rule.check(t, size)
}

// ChunkHeader is the fixed wire header of a chunk.
type ChunkHeader struct {
	Type ChunkType
	Size uint32
}

func EncodeChunkHeader(h ChunkHeader) []byte {
	buf := make([]byte, ChunkHeaderLen)
	buf[0] = byte(h.Type)
	binary.LittleEndian.PutUint32(buf[1:5], h.Size)
	return buf
}

func DecodeChunkHeader(b []byte) (ChunkHeader, error) {
	if len(b) != ChunkHeaderLen {
		return ChunkHeader{}, fmt.Errorf("cartridge: invalid chunk header length: %d", len(b))
	}
	t, err := ParseChunkType(b[0])
	if err != nil {
		return ChunkHeader{}, err
	}
	return ChunkHeader{Type: t, Size: binary.LittleEndian.Uint32(b[1:5])}, nil
}

func ReadChunkHeader(r io.Reader) (ChunkHeader, error) {
	var fixed [ChunkHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:1]); err != nil {
		return ChunkHeader{}, ioFailure("read chunk type", err)
	}
	// the tag is checked before the length is read
	if _, err := ParseChunkType(fixed[0]); err != nil {
		return ChunkHeader{}, err
	}
	if _, err := io.ReadFull(r, fixed[1:]); err != nil {
		return ChunkHeader{}, ioFailure("read chunk size", err)
	}
	return DecodeChunkHeader(fixed[:])
}

func WriteChunkHeader(w io.Writer, h ChunkHeader) error {
	if _, err := w.Write(EncodeChunkHeader(h)); err != nil {
		return ioFailure("write chunk header", err)
	}
	return nil
}

// Chunk is one typed, length-prefixed record. The zero value is the End chunk.
type Chunk struct {
	Header ChunkHeader
	Data   []byte
}

// NewChunk builds a chunk whose header matches data.
func NewChunk(t ChunkType, data []byte) Chunk {
	return Chunk{
		Header: ChunkHeader{Type: t, Size: uint32(len(data))},
		Data:   data,
	}
}

func (c Chunk) Type() ChunkType {
	return c.Header.Type
}

// Validate checks header/payload consistency and the size rule of the type.
func (c Chunk) Validate() error {
	if uint64(c.Header.Size) != uint64(len(c.Data)) {
		return &MismatchedChunkSizesError{
			Type:       c.Header.Type,
			HeaderSize: int(c.Header.Size),
			DataSize:   len(c.Data),
		}
	}
	return ValidateChunkSize(c.Header.Type, len(c.Data))
}

// EncodedLen is the number of bytes WriteChunk produces for c.
func (c Chunk) EncodedLen() int {
	return ChunkHeaderLen + len(c.Data)
}

// ReadChunk reads and validates one chunk. Payloads of zero length decode
// to a nil Data slice.
func ReadChunk(r io.Reader) (Chunk, error) {
	h, err := ReadChunkHeader(r)
	if err != nil {
		return Chunk{}, err
	}

	// refuse lengths no rule can accept before allocating for them
	rule := sizeRules[h.Type]
	if uint64(h.Size) > uint64(rule.limit()) {
		return Chunk{}, rule.check(h.Type, int(h.Size))
	}

	var data []byte
	if h.Size > 0 {
		data = make([]byte, h.Size)
		if _, err := io.ReadFull(r, data); err != nil {
			return Chunk{}, ioFailure("read chunk payload", err)
		}
	}

	c := Chunk{Header: h, Data: data}
	if err := c.Validate(); err != nil {
		return Chunk{}, err
	}
	return c, nil
}

// WriteChunk validates c and writes it. Nothing is written when c is invalid.
func WriteChunk(w io.Writer, c Chunk) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := WriteChunkHeader(w, c.Header); err != nil {
		return err
	}
	if len(c.Data) > 0 {
		if _, err := w.Write(c.Data); err != nil {
			return ioFailure("write chunk payload", err)
		}
	}
	return nil
}

func appendChunk(buf []byte, c Chunk) []byte {
	buf = append(buf, EncodeChunkHeader(c.Header)...)
	return append(buf, c.Data...)
}
