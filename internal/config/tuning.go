package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the reference tuning file shipped with the repo.
const DefaultConfigPath = "config/tuning.defaults.json"

// Defaults tuned for the Chrome dino game's default (light) colour scheme.
const (
	DefaultDarkThreshold   = 150
	DefaultObstacleRatio   = 0.01
	DefaultCooldown        = 300 * time.Millisecond
	DefaultInterval        = 33 * time.Millisecond
	DefaultMargin          = 100
	DefaultMinWidth        = 200
	DefaultMinHeight       = 100
	DefaultStartDelay      = 3 * time.Second
	DefaultStartSettle     = 500 * time.Millisecond
	DefaultJumpKey         = "space"
	DefaultRecordBatchSize = 30
)

// TuningConfig holds the detector, loop and calibration parameters. Every field
// is optional; the Get* methods fall back to the defaults above, so a partial
// file only overrides what it names.
type TuningConfig struct {
	// Detection params
	DarkThreshold *int     `json:"dark_threshold,omitempty"`
	ObstacleRatio *float64 `json:"obstacle_ratio,omitempty"`

	// Loop params
	Cooldown    *string `json:"cooldown,omitempty"` // duration string like "300ms"
	Interval    *string `json:"interval,omitempty"`
	StartDelay  *string `json:"start_delay,omitempty"`
	StartSettle *string `json:"start_settle,omitempty"`
	JumpKey     *string `json:"jump_key,omitempty"`

	// Calibration params
	Margin    *int `json:"margin,omitempty"`
	MinWidth  *int `json:"min_width,omitempty"`
	MinHeight *int `json:"min_height,omitempty"`

	// Recording params
	RecordBatchSize *int `json:"record_batch_size,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the package defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		DarkThreshold:   ptrInt(DefaultDarkThreshold),
		ObstacleRatio:   ptrFloat64(DefaultObstacleRatio),
		Cooldown:        ptrString(DefaultCooldown.String()),
		Interval:        ptrString(DefaultInterval.String()),
		StartDelay:      ptrString(DefaultStartDelay.String()),
		StartSettle:     ptrString(DefaultStartSettle.String()),
		JumpKey:         ptrString(DefaultJumpKey),
		Margin:          ptrInt(DefaultMargin),
		MinWidth:        ptrInt(DefaultMinWidth),
		MinHeight:       ptrInt(DefaultMinHeight),
		RecordBatchSize: ptrInt(DefaultRecordBatchSize),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 64 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DarkThreshold != nil {
		if *c.DarkThreshold < 1 || *c.DarkThreshold > 255 {
			return fmt.Errorf("dark_threshold must be between 1 and 255, got %d", *c.DarkThreshold)
		}
	}

	if c.ObstacleRatio != nil {
		if *c.ObstacleRatio < 0 || *c.ObstacleRatio >= 1 {
			return fmt.Errorf("obstacle_ratio must be in [0, 1), got %f", *c.ObstacleRatio)
		}
	}

	durations := []struct {
		name     string
		value    *string
		positive bool
	}{
		{"cooldown", c.Cooldown, false},
		{"interval", c.Interval, true},
		{"start_delay", c.StartDelay, false},
		{"start_settle", c.StartSettle, false},
	}
	for _, d := range durations {
		if d.value == nil || *d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(*d.value)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.value, err)
		}
		if parsed < 0 || (d.positive && parsed == 0) {
			return fmt.Errorf("%s must be positive, got %s", d.name, *d.value)
		}
	}

	if c.JumpKey != nil && *c.JumpKey == "" {
		return fmt.Errorf("jump_key must not be empty")
	}

	if c.Margin != nil && *c.Margin < 0 {
		return fmt.Errorf("margin must be non-negative, got %d", *c.Margin)
	}
	if c.MinWidth != nil && *c.MinWidth < 1 {
		return fmt.Errorf("min_width must be positive, got %d", *c.MinWidth)
	}
	if c.MinHeight != nil && *c.MinHeight < 1 {
		return fmt.Errorf("min_height must be positive, got %d", *c.MinHeight)
	}
	if c.RecordBatchSize != nil && *c.RecordBatchSize < 1 {
		return fmt.Errorf("record_batch_size must be positive, got %d", *c.RecordBatchSize)
	}

	return nil
}

// GetDarkThreshold returns the luminance below which a pixel counts as dark,
// clamped to 0..255 for configs that skipped Validate.
func (c *TuningConfig) GetDarkThreshold() uint8 {
	if c.DarkThreshold == nil {
		return DefaultDarkThreshold
	}
	switch v := *c.DarkThreshold; {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// GetObstacleRatio returns the dark-pixel fraction above which an obstacle is reported.
func (c *TuningConfig) GetObstacleRatio() float64 {
	if c.ObstacleRatio == nil {
		return DefaultObstacleRatio
	}
	return *c.ObstacleRatio
}

// GetCooldown returns the minimum time between two jumps.
func (c *TuningConfig) GetCooldown() time.Duration {
	return parseDurationOr(c.Cooldown, DefaultCooldown)
}

// GetInterval returns the sleep between loop iterations.
func (c *TuningConfig) GetInterval() time.Duration {
	return parseDurationOr(c.Interval, DefaultInterval)
}

// GetStartDelay returns how long to wait before pressing the start key.
func (c *TuningConfig) GetStartDelay() time.Duration {
	return parseDurationOr(c.StartDelay, DefaultStartDelay)
}

// GetStartSettle returns the pause between the start key and the first sample.
func (c *TuningConfig) GetStartSettle() time.Duration {
	return parseDurationOr(c.StartSettle, DefaultStartSettle)
}

// GetJumpKey returns the key name pressed for a jump.
func (c *TuningConfig) GetJumpKey() string {
	if c.JumpKey == nil || *c.JumpKey == "" {
		return DefaultJumpKey
	}
	return *c.JumpKey
}

// GetMargin returns the screen margin used by heuristic calibration.
func (c *TuningConfig) GetMargin() int {
	if c.Margin == nil {
		return DefaultMargin
	}
	return *c.Margin
}

// GetMinWidth returns the minimum manual calibration width.
func (c *TuningConfig) GetMinWidth() int {
	if c.MinWidth == nil {
		return DefaultMinWidth
	}
	return *c.MinWidth
}

// GetMinHeight returns the minimum manual calibration height.
func (c *TuningConfig) GetMinHeight() int {
	if c.MinHeight == nil {
		return DefaultMinHeight
	}
	return *c.MinHeight
}

// GetRecordBatchSize returns how many samples the recorder buffers per flush.
func (c *TuningConfig) GetRecordBatchSize() int {
	if c.RecordBatchSize == nil {
		return DefaultRecordBatchSize
	}
	return *c.RecordBatchSize
}

func parseDurationOr(v *string, fallback time.Duration) time.Duration {
	if v == nil || *v == "" {
		return fallback
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fallback // default on parse error
	}
	return d
}
