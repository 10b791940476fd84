package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the tuning parameters for all pipeline stages. Fields are
// pointers so that a partial JSON file only overrides what it names; the
// Get* accessors supply the defaults. The same struct covers standardizing,
// smoothing, merging and feature extraction so one file configures a whole
// processing campaign.
type Config struct {
	// Standardizer params
	VisCutoffNm *float64 `json:"vis_cutoff_nm,omitempty"`

	// Savitzky-Golay params (also used by the summary stage)
	SmoothWindow    *int `json:"smooth_window,omitempty"`
	SmoothPolyOrder *int `json:"smooth_poly_order,omitempty"`

	// Merge params
	StitchWavelengthNm *float64 `json:"stitch_wavelength_nm,omitempty"`
	StitchWindowNm     *float64 `json:"stitch_window_nm,omitempty"`
	MinSignal          *float64 `json:"min_signal,omitempty"`

	// Feature extraction noise gate
	IntensityThreshold *float64 `json:"intensity_threshold,omitempty"`
	TimeThreshold      *float64 `json:"time_threshold,omitempty"`
}

// EmptyConfig returns a Config with all fields unset, which resolves to
// the documented defaults through the Get* accessors.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.SmoothWindow != nil {
		if *c.SmoothWindow < 1 || *c.SmoothWindow%2 == 0 {
			return fmt.Errorf("smooth_window must be odd and positive, got %d", *c.SmoothWindow)
		}
	}
	if c.SmoothPolyOrder != nil {
		if *c.SmoothPolyOrder < 0 {
			return fmt.Errorf("smooth_poly_order must be non-negative, got %d", *c.SmoothPolyOrder)
		}
		if *c.SmoothPolyOrder >= c.GetSmoothWindow() {
			return fmt.Errorf("smooth_poly_order %d must be less than smooth_window %d",
				*c.SmoothPolyOrder, c.GetSmoothWindow())
		}
	}
	if c.StitchWindowNm != nil && *c.StitchWindowNm <= 0 {
		return fmt.Errorf("stitch_window_nm must be positive, got %f", *c.StitchWindowNm)
	}
	if c.MinSignal != nil && *c.MinSignal < 0 {
		return fmt.Errorf("min_signal must be non-negative, got %f", *c.MinSignal)
	}
	if c.IntensityThreshold != nil && *c.IntensityThreshold < 0 {
		return fmt.Errorf("intensity_threshold must be non-negative, got %f", *c.IntensityThreshold)
	}
	return nil
}

// GetVisCutoffNm returns the visible-band wavelength cutoff or the default.
// Rows below the cutoff carry excitation bleed-through and are dropped.
func (c *Config) GetVisCutoffNm() float64 {
	if c.VisCutoffNm == nil {
		return 500.0
	}
	return *c.VisCutoffNm
}

// GetSmoothWindow returns the Savitzky-Golay window length or the default.
func (c *Config) GetSmoothWindow() int {
	if c.SmoothWindow == nil {
		return 11
	}
	return *c.SmoothWindow
}

// GetSmoothPolyOrder returns the Savitzky-Golay polynomial order or the default.
func (c *Config) GetSmoothPolyOrder() int {
	if c.SmoothPolyOrder == nil {
		return 2
	}
	return *c.SmoothPolyOrder
}

// GetStitchWavelengthNm returns the stitch centre wavelength or the default.
func (c *Config) GetStitchWavelengthNm() float64 {
	if c.StitchWavelengthNm == nil {
		return 930.0
	}
	return *c.StitchWavelengthNm
}

// GetStitchWindowNm returns the overlap half-width or the default.
func (c *Config) GetStitchWindowNm() float64 {
	if c.StitchWindowNm == nil {
		return 10.0
	}
	return *c.StitchWindowNm
}

// GetMinSignal returns the minimum mean visible-band intensity required in
// the overlap window before cross-band scaling is applied.
func (c *Config) GetMinSignal() float64 {
	if c.MinSignal == nil {
		return 50.0
	}
	return *c.MinSignal
}

// GetIntensityThreshold returns the noise-gate intensity threshold or the default.
func (c *Config) GetIntensityThreshold() float64 {
	if c.IntensityThreshold == nil {
		return 50.0
	}
	return *c.IntensityThreshold
}

// GetTimeThreshold returns the noise-gate time threshold or the default. The
// gate only applies past this elapsed time, so the initial transient is
// always analysed.
func (c *Config) GetTimeThreshold() float64 {
	if c.TimeThreshold == nil {
		return 100.0
	}
	return *c.TimeThreshold
}
