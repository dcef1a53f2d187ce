package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gbrlfaria/chaseconv/converter"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.p3m [input.frm ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	format := flag.String("format", "glb", `output format ("glb" or "gc")`)
	frmVersion := flag.String("frm", "1.1", `FRM version for "gc" output ("1.0" or "1.1")`)
	outDir := flag.String("out", ".", "output directory")
	configPath := flag.String("config", "", "yaml config file, overrides the other options")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	config := &converter.Config{
		Format:     *format,
		FrmVersion: *frmVersion,
		OutDir:     *outDir,
	}
	if *configPath != "" {
		var err error
		config, err = converter.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	conv, err := config.Converter()
	if err != nil {
		log.Fatal(err)
	}

	var assets []*converter.Asset
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read %q: %v", path, err)
			continue
		}
		assets = append(assets, converter.NewAsset(data, path))
	}

	results, err := conv.Convert(assets)
	if err != nil {
		log.Fatal(err)
	}
	if len(results) == 0 {
		log.Println("No assets were exported")
		os.Exit(1)
	}

	if err := os.MkdirAll(config.OutDir, 0o755); err != nil {
		log.Fatalf("Failed to create the output directory: %v", err)
	}

	for _, asset := range results {
		path := filepath.Join(config.OutDir, filepath.Base(asset.Path))
		if _, err := os.Stat(path); err == nil {
			// Keep the existing file and write under a unique name instead.
			uid := strings.ReplaceAll(uuid.NewString(), "-", "")
			path = filepath.Join(config.OutDir,
				fmt.Sprintf("%s_%s.%s", asset.Name(), uid[:len(uid)/2], asset.Extension()))
		}

		if err := os.WriteFile(path, asset.Bytes, 0o644); err != nil {
			log.Printf("Failed to export %q: %v", filepath.Base(path), err)
			continue
		}
		log.Printf("Exported %q", filepath.Base(path))
	}
}
