// Package converter translates assets between the GrandChase binary formats
// (.p3m geometry, .frm animation) and glTF binary (.glb), through the
// intermediate scene representation.
package converter

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gbrlfaria/chaseconv/frm"
	"github.com/gbrlfaria/chaseconv/scene"
)

// Asset is a file crossing the conversion boundary: raw bytes plus the path
// they were read from or should be written to.
type Asset struct {
	Bytes []byte
	Path  string
}

// NewAsset returns an asset for the given bytes and path.
func NewAsset(bytes []byte, path string) *Asset {
	return &Asset{Bytes: bytes, Path: path}
}

// Name returns the file name without directory and extension.
func (a *Asset) Name() string {
	base := filepath.Base(a.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extension returns the lower-case file extension without the period.
func (a *Asset) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(a.Path), "."))
}

// Importer imports asset files into a scene.
type Importer interface {
	Import(asset *Asset, s *scene.Scene) error
	// Extensions returns the file extensions supported by the importer,
	// without the period (e.g. "p3m", not ".p3m").
	Extensions() []string
}

// Exporter exports a scene into one or more asset files.
type Exporter interface {
	Export(s *scene.Scene) ([]*Asset, error)
}

// DeserializationError reports malformed or truncated input bytes, or a
// string field with invalid text.
type DeserializationError struct {
	Format string
	Err    error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize the bytes of the %s asset: %v", e.Format, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// UnsupportedExtensionError reports an asset whose extension has no
// registered importer.
type UnsupportedExtensionError struct {
	Extension string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported extension %q", e.Extension)
}

// Importers returns all available importers.
func Importers() []Importer {
	return []Importer{
		&P3MImporter{},
		&FRMImporter{},
		&GLTFImporter{},
	}
}

// Converter converts any importable input format to a fixed set of output
// formats.
type Converter struct {
	// Name is the display name of the output format.
	Name      string
	Exporters []Exporter
}

// NewGLBConverter returns the converter that outputs glTF binary.
func NewGLBConverter() *Converter {
	return &Converter{
		Name:      ".GLB (glTF)",
		Exporters: []Exporter{&GLTFExporter{}},
	}
}

// NewGrandChaseConverter returns the converter that outputs the GrandChase
// formats, writing animations with the given FRM version.
func NewGrandChaseConverter(version frm.Version) *Converter {
	return &Converter{
		Name: ".P3M/FRM (GrandChase)",
		Exporters: []Exporter{
			&P3MExporter{},
			&FRMExporter{Version: version},
		},
	}
}

// Convert imports the given assets, merges them in input order and runs the
// converter's exporters on the merged scene. Assets that fail to import or
// have no matching importer are logged and skipped rather than aborting the
// batch. It returns nil when nothing could be imported.
func (c *Converter) Convert(assets []*Asset) ([]*Asset, error) {
	byExtension := map[string]Importer{}
	for _, importer := range Importers() {
		for _, ext := range importer.Extensions() {
			byExtension[ext] = importer
		}
	}

	var merged *scene.Scene
	for _, asset := range assets {
		importer, ok := byExtension[asset.Extension()]
		if !ok {
			log.Printf("Skipped %q: %v", filepath.Base(asset.Path),
				&UnsupportedExtensionError{Extension: asset.Extension()})
			continue
		}

		s := &scene.Scene{}
		if err := importer.Import(asset, s); err != nil {
			log.Printf("Failed to import %q: %v", filepath.Base(asset.Path), err)
			continue
		}

		if merged == nil {
			merged = s
		} else {
			merged = merged.Merge(s)
		}
	}
	if merged == nil {
		return nil, nil
	}

	var result []*Asset
	for _, exporter := range c.Exporters {
		assets, err := exporter.Export(merged)
		if err != nil {
			return nil, err
		}
		result = append(result, assets...)
	}
	return result, nil
}
