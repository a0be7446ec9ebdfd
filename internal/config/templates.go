package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "cartd":
		return cartdTemplate, nil
	case "manifest":
		return manifestTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const cartdTemplate = `id = "cartd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_upload_bytes = 1048576
cache_size = 64
read_timeout = "10s"
read_header_timeout = "5s"
write_timeout = "30s"
store_backend = "fs"
store_path = "local/carts"
`

const manifestTemplate = `name = "untitled"
desc = ""
author = ""
version = 1
code = "main.code"
# cover = "cover.bin"      # 245760 bytes, one palette index per pixel
# font = "font.bin"        # 16384 bytes
# map = "map.bin"          # up to 122880 bytes, glyph and color per tile
# palette = "2d1b001e"     # 0, 4, 8 or 16 bytes as hex
# palette_file = "palette.bin"
`
