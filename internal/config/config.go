// Package config provides run configuration and its persistence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"race-clock/internal/layout"
	"race-clock/internal/trim"
)

// Classifier backends.
const (
	ClassifierCentroid  = "centroid"
	ClassifierTesseract = "tesseract"
)

// Histogram backends.
const (
	HistogramGo     = "go"
	HistogramOpenCV = "opencv"
)

// Config holds the settings of a run.
type Config struct {
	// Frame root; each race lives in a subdirectory named by its id.
	PicDir string `json:"pic_dir"`
	// Classifier model; empty means search the default locations.
	ModelPath string `json:"model_path,omitempty"`

	Layout string `json:"layout"`
	RCW    bool   `json:"rcw"`

	Classifier string `json:"classifier"`
	Histogram  string `json:"histogram"`

	// Trim settings
	StartThreshold float64 `json:"start_threshold"`
	EndThreshold   float64 `json:"end_threshold"`
	LookBack       int     `json:"look_back"`

	// Workers bounds concurrent frame decoding; 0 means one per CPU.
	Workers int `json:"workers,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		PicDir:         "pic",
		Layout:         layout.NameLegacy3,
		Classifier:     ClassifierCentroid,
		Histogram:      HistogramGo,
		StartThreshold: trim.DefaultStartThreshold,
		EndThreshold:   trim.DefaultEndThreshold,
		LookBack:       trim.DefaultLookBack,
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.PicDir == "" {
		return errors.New("pic_dir is required")
	}
	if _, err := layout.ByName(c.Layout); err != nil {
		return err
	}
	switch c.Classifier {
	case ClassifierCentroid, ClassifierTesseract:
	default:
		return fmt.Errorf("unknown classifier %q", c.Classifier)
	}
	switch c.Histogram {
	case HistogramGo, HistogramOpenCV:
	default:
		return fmt.Errorf("unknown histogram backend %q", c.Histogram)
	}
	for name, v := range map[string]float64{
		"start_threshold": c.StartThreshold,
		"end_threshold":   c.EndThreshold,
	} {
		if v < -1 || v > 1 {
			return fmt.Errorf("%s %.2f outside [-1, 1]", name, v)
		}
	}
	if c.LookBack < 1 {
		return fmt.Errorf("look_back must be positive, got %d", c.LookBack)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// DigitLayout returns the configured layout, shifted when RCW is set.
func (c *Config) DigitLayout() (layout.DigitLayout, error) {
	l, err := layout.ByName(c.Layout)
	if err != nil {
		return layout.DigitLayout{}, err
	}
	return l.WithRCW(c.RCW), nil
}

// Load reads a configuration file over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
