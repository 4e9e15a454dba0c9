package imaging

import (
	"errors"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Descriptor is one row of the variant matrix.
type Descriptor struct {
	Label string `yaml:"label"`
	Width int    `yaml:"width"`
}

// Quality holds per-format encoder quality in the range 1..100.
type Quality struct {
	JPEG int `yaml:"jpeg" env:"IMAGING_JPEG_QUALITY" envDefault:"88"`
	WebP int `yaml:"webp" env:"IMAGING_WEBP_QUALITY" envDefault:"88"`
	AVIF int `yaml:"avif" env:"IMAGING_AVIF_QUALITY" envDefault:"90"`
}

// For returns the configured quality of f.
func (q Quality) For(f Format) int {
	switch f {
	case FormatJPEG:
		return q.JPEG
	case FormatWebP:
		return q.WebP
	case FormatAVIF:
		return q.AVIF
	default:
		return 0
	}
}

// Config is the variant matrix and its limits. It is injected into NewEncoder;
// the encoder never reads configuration from anywhere else.
type Config struct {
	Variants     []Descriptor `yaml:"variants"`
	Quality      Quality      `yaml:"quality"`
	AVIF         bool         `yaml:"avif" env:"IMAGING_AVIF_ENABLED" envDefault:"false"`
	DefaultLabel string       `yaml:"default_label" env:"IMAGING_DEFAULT_VARIANT" envDefault:"thumb"`
	MaxBytes     int64        `yaml:"max_bytes" env:"IMAGING_MAX_BYTES" envDefault:"20971520"`
	MaxPixels    int          `yaml:"max_pixels" env:"IMAGING_MAX_PIXELS" envDefault:"40000000"`
}

// DefaultVariants is the catalog's standard matrix.
func DefaultVariants() []Descriptor {
	return []Descriptor{
		{Label: "thumb", Width: 80},
		{Label: "card", Width: 260},
		{Label: "grid", Width: 400},
		{Label: "grid_2x", Width: 800},
		{Label: "detail", Width: 1000},
	}
}

// DefaultConfig returns the standard matrix with AVIF disabled.
func DefaultConfig() Config {
	return Config{
		Variants:     DefaultVariants(),
		Quality:      Quality{JPEG: 88, WebP: 88, AVIF: 90},
		DefaultLabel: "thumb",
		MaxBytes:     20 << 20,
		MaxPixels:    40_000_000,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Variants) == 0 {
		c.Variants = d.Variants
	}
	if c.Quality.JPEG == 0 {
		c.Quality.JPEG = d.Quality.JPEG
	}
	if c.Quality.WebP == 0 {
		c.Quality.WebP = d.Quality.WebP
	}
	if c.Quality.AVIF == 0 {
		c.Quality.AVIF = d.Quality.AVIF
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = d.DefaultLabel
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = d.MaxBytes
	}
	if c.MaxPixels == 0 {
		c.MaxPixels = d.MaxPixels
	}
	return c
}

// Validate checks the matrix: unique non-empty labels, positive widths,
// qualities within 1..100 and a default label present in the matrix.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Variants))
	for _, d := range c.Variants {
		switch {
		case d.Label == "":
			errs = append(errs, errors.New("variant label must not be empty"))
		case seen[d.Label]:
			errs = append(errs, fmt.Errorf("duplicate variant label %q", d.Label))
		}
		if d.Width <= 0 {
			errs = append(errs, fmt.Errorf("variant %q: width must be positive", d.Label))
		}
		seen[d.Label] = true
	}
	if len(c.Variants) == 0 {
		errs = append(errs, errors.New("at least one variant is required"))
	}
	if !seen[c.DefaultLabel] {
		errs = append(errs, fmt.Errorf("default variant %q is not in the matrix", c.DefaultLabel))
	}
	for _, f := range []Format{FormatJPEG, FormatWebP, FormatAVIF} {
		if q := c.Quality.For(f); q < 1 || q > 100 {
			errs = append(errs, fmt.Errorf("%s quality %d out of range 1..100", f, q))
		}
	}
	if c.MaxBytes < 0 || c.MaxPixels < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// Descriptor returns the descriptor with the given label.
func (c Config) Descriptor(label string) (Descriptor, bool) {
	for _, d := range c.Variants {
		if d.Label == label {
			return d, true
		}
	}
	return Descriptor{}, false
}

// LoadConfig reads a YAML variant matrix. Omitted fields keep their defaults.
//
//	variants:
//	  - {label: thumb, width: 80}
//	  - {label: zoom, width: 1600}
//	quality: {jpeg: 85}
//	avif: true
func LoadConfig(r io.Reader) (Config, error) {
	cfg := Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays the IMAGING_* variables present in the environment on c,
// so a deployment can tune a file-based matrix without editing it. Fields
// whose variable is unset keep their value.
func ApplyEnv(c Config) (Config, error) {
	// no tag carries this name, so envDefault values are never applied
	opts := env.Options{DefaultValueTagName: "envOverlayDefault"}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
