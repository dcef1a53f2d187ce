package converter

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/gbrlfaria/chaseconv/frm"
)

// Config selects the conversion target and output location.
type Config struct {
	// Format is the output format, either "glb" or "gc".
	Format string `yaml:"format"`
	// FrmVersion selects the FRM sub-format for "gc" output, either "1.0"
	// or "1.1".
	FrmVersion string `yaml:"frm_version"`
	// OutDir is the directory the converted assets are written to.
	OutDir string `yaml:"out"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Format:     "glb",
		FrmVersion: "1.1",
		OutDir:     ".",
	}
}

// ParseConfig reads a yaml config. Missing fields keep their defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to parse the config")
	}
	if config.OutDir == "" {
		config.OutDir = "."
	}
	return config, nil
}

// LoadConfig reads a yaml config file from disk.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open the config file %q", path)
	}
	defer f.Close()
	return ParseConfig(f)
}

// Converter returns the converter selected by the config.
func (c *Config) Converter() (*Converter, error) {
	switch c.Format {
	case "glb", "":
		return NewGLBConverter(), nil
	case "gc":
		version, err := c.frmVersion()
		if err != nil {
			return nil, err
		}
		return NewGrandChaseConverter(version), nil
	default:
		return nil, errors.Errorf("unknown output format %q", c.Format)
	}
}

func (c *Config) frmVersion() (frm.Version, error) {
	switch c.FrmVersion {
	case "1.1", "":
		return frm.Version11, nil
	case "1.0":
		return frm.Version10, nil
	default:
		return 0, errors.Errorf("unknown FRM version %q", c.FrmVersion)
	}
}
