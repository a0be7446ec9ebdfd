package cartridge

import (
	"errors"
	"fmt"
)

// ErrInvalidUTF8 is returned when a text field is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("cartridge: invalid utf-8")

// InvalidChunkTypeError reports a chunk tag outside the known type table.
type InvalidChunkTypeError struct {
	Type byte
}

func (e *InvalidChunkTypeError) Error() string {
	return fmt.Sprintf("cartridge: invalid chunk type %d", e.Type)
}

// InvalidChunkSizeError reports a payload length outside the set of legal
// sizes for a fixed or enumerated size chunk type.
type InvalidChunkSizeError struct {
	Type    ChunkType
	Size    int
	Allowed []int
}

func (e *InvalidChunkSizeError) Error() string {
	return fmt.Sprintf("cartridge: invalid chunk size %d for type %s, expected one of %v", e.Size, e.Type, e.Allowed)
}

// InvalidChunkMaxSizeError reports a variable size chunk over its ceiling.
type InvalidChunkMaxSizeError struct {
	Type ChunkType
	Size int
	Max  int
}

func (e *InvalidChunkMaxSizeError) Error() string {
	return fmt.Sprintf("cartridge: invalid chunk size %d for type %s, max %d", e.Size, e.Type, e.Max)
}

// MismatchedChunkSizesError reports a chunk whose header size disagrees with
// its payload. Only reachable through a hand-built Chunk.
type MismatchedChunkSizesError struct {
	Type       ChunkType
	HeaderSize int
	DataSize   int
}

func (e *MismatchedChunkSizesError) Error() string {
	return fmt.Sprintf(
		"cartridge: mismatched chunk header size %d and data size %d for type %s",
		e.HeaderSize,
		e.DataSize,
		e.Type,
	)
}

// StringTooLongError reports a text field that does not fit its header size field.
type StringTooLongError struct {
	Field string
	Size  int
	Max   int
}

func (e *StringTooLongError) Error() string {
	return fmt.Sprintf("cartridge: %s is %d bytes, max %d", e.Field, e.Size, e.Max)
}

// IOError wraps a failure of the underlying stream, including truncation.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cartridge: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError reports whether err came from the underlying stream.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

func ioFailure(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
