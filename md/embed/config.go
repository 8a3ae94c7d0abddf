package embed

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config configures a Codec.
type Config struct {
	// ImageBaseURL is the base URL that emoji sources are resolved against.
	ImageBaseURL string `yaml:"image_base_url"`
	// Catalog is the path to a YAML emoji catalog. The built-in catalog is
	// used if empty.
	Catalog string `yaml:"catalog"`
	// Formula configures formula typesetting.
	Formula FormulaConfig `yaml:"formula"`
}

// FormulaConfig configures the TeX typesetter.
type FormulaConfig struct {
	// Size is the font size in points.
	Size float64 `yaml:"size"`
	// DPI is the resolution of the rendered image.
	DPI float64 `yaml:"dpi"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ImageBaseURL: DefaultImageBaseURL,
		Formula: FormulaConfig{
			Size: 12,
			DPI:  144,
		},
	}
}

// LoadConfig decodes a YAML configuration from r on top of DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrap(err, "cannot decode embed config")
	}
	return cfg, nil
}

// LoadCatalog loads the catalog named by the config.
func (cfg Config) LoadCatalog() (*Catalog, error) {
	if cfg.Catalog == "" {
		return DefaultCatalog(), nil
	}

	f, err := os.Open(cfg.Catalog)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open emoji catalog")
	}
	defer f.Close()

	return LoadCatalog(f)
}
