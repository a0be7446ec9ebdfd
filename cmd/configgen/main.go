package main

import (
	"flag"
	"log"

	"github.com/danmuck/tincart/internal/config"
	"github.com/danmuck/tincart/internal/manifest"
)

func main() {
	kind := flag.String("kind", "cartd", "config kind: cartd|manifest")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "cartd":
			if _, err := config.LoadServiceConfig(path); err != nil {
				log.Fatal(err)
			}
		case "manifest":
			if _, err := manifest.Load(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case "cartd":
		return "cmd/cartd/config.toml"
	case "manifest":
		return manifest.FileName
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
