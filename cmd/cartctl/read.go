package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/danmuck/tincart/internal/cartridge"
)

// readCartridge decodes the cartridge file at path. consumed is the number of
// bytes the decoder read, which is short of len(data) when the file carries
// trailing bytes after the End chunk.
func readCartridge(path string) (cart *cartridge.Cartridge, data []byte, consumed int, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, 0, err
	}
	r := bytes.NewReader(data)
	cart, err = cartridge.Decode(r)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return cart, data, len(data) - r.Len(), nil
}
