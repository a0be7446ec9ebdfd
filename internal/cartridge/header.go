package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderLen is the fixed wire size of the cartridge header.
const HeaderLen = 5

// Container format defaults.
const (
	DefaultCartVersion uint8  = 1
	DefaultNameSize    uint8  = 64
	DefaultDescSize    uint16 = 512
	DefaultAuthorSize  uint8  = 64
)

// Header is the fixed cartridge header. The sizes are the byte lengths of
// the name, description and author fields that follow it.
type Header struct {
	CartVersion uint8
	NameSize    uint8
	DescSize    uint16
	AuthorSize  uint8
}

func DefaultHeader() Header {
	return Header{
		CartVersion: DefaultCartVersion,
		NameSize:    DefaultNameSize,
		DescSize:    DefaultDescSize,
		AuthorSize:  DefaultAuthorSize,
	}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = h.CartVersion
	buf[1] = h.NameSize
	binary.LittleEndian.PutUint16(buf[2:4], h.DescSize)
	buf[4] = h.AuthorSize
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("cartridge: invalid header length: %d", len(b))
	}
	return Header{
		CartVersion: b[0],
		NameSize:    b[1],
		DescSize:    binary.LittleEndian.Uint16(b[2:4]),
		AuthorSize:  b[4],
	}, nil
}

func ReadHeader(r io.Reader) (Header, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, ioFailure("read header", err)
	}
	return DecodeHeader(fixed[:])
}

func WriteHeader(w io.Writer, h Header) error {
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return ioFailure("write header", err)
	}
	return nil
}
