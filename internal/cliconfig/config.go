package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/kingrid/internal/adapters/freenect"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/render"
)

// Frame sources.
const (
	SourceFreenect  = "freenect"
	SourceSynthetic = "synthetic"
	SourceReplay    = "replay"
	SourceSpool     = "spool"
)

// Indicator backends.
const (
	IndicatorDevice = "device"
	IndicatorSerial = "serial"
	IndicatorLog    = "log"
	IndicatorNone   = "none"
)

// DefaultDivisions is the grid size along each axis.
const DefaultDivisions = 8

// SerialConfig describes the serial line of an external indicator.
type SerialConfig struct {
	Port     string
	Baud     int
	DataBits int
	StopBits int
	Parity   string
}

// Config holds CLI configuration for kingrid.
type Config struct {
	Divisions int
	Mode      render.Mode
	Near      float64
	Far       float64

	// BoxWidth and HistRows are derived from the terminal when zero
	BoxWidth  int
	HistRows  int
	HistScale float64

	Source string
	Device int
	Input  string
	Loop   bool
	Remove bool
	FPS    float64
	Tilt   float64

	Indicator string
	Serial    SerialConfig

	Frames   int
	NoClear  bool
	NoHeader bool

	LogFile  string
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	opts := render.DefaultOptions()
	return Config{
		Divisions: DefaultDivisions,
		Mode:      opts.Mode,
		Near:      opts.Near,
		Far:       opts.Far,
		HistScale: opts.HistScale,
		Source:    SourceFreenect,
		FPS:       30,
		Tilt:      freenect.DefaultTilt,
		Indicator: IndicatorDevice,
		LogLevel:  "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Divisions < 1 {
		return invalid("divisions must be at least 1, got %d", c.Divisions)
	}
	if c.Near < 0 || c.Far <= c.Near {
		return invalid("clipping planes must satisfy 0 <= near < far (near=%g far=%g)", c.Near, c.Far)
	}
	if c.BoxWidth < 0 {
		return invalid("box width must not be negative")
	}
	if c.HistRows < 0 || c.HistRows > domain.HistogramBins {
		return invalid("histogram rows must be between 0 and %d", domain.HistogramBins)
	}
	if c.HistScale <= 0 {
		return invalid("histogram scale must be positive")
	}

	switch c.Source {
	case SourceFreenect, SourceSynthetic:
	case SourceReplay, SourceSpool:
		if c.Input == "" {
			return invalid("source %s requires --input", c.Source)
		}
	default:
		return invalid("unknown source %q", c.Source)
	}
	if c.Device < 0 {
		return invalid("device index must not be negative")
	}
	if c.FPS < 0 {
		return invalid("fps must not be negative")
	}
	if c.Frames < 0 {
		return invalid("frame limit must not be negative")
	}

	switch c.Indicator {
	case IndicatorDevice:
		// Only the camera has an LED; other sources log instead.
		if c.Source != SourceFreenect {
			c.Indicator = IndicatorLog
		}
	case IndicatorSerial:
		if c.Serial.Port == "" {
			return invalid("serial indicator requires --serial-port")
		}
	case IndicatorLog, IndicatorNone:
	default:
		return invalid("unknown indicator %q", c.Indicator)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("log level: %v", err)
	}
	return nil
}

// RenderOptions builds the renderer options for a terminal of the given size.
func (c *Config) RenderOptions(cols, lines int) render.Options {
	opts := render.DefaultOptions()
	opts.Mode = c.Mode
	opts.Near = c.Near
	opts.Far = c.Far
	opts.HistScale = c.HistScale
	opts.Header = !c.NoHeader

	opts.BoxWidth = c.BoxWidth
	if opts.BoxWidth == 0 {
		opts.BoxWidth = render.BoxWidthForColumns(cols, c.Divisions)
	}
	opts.HistRows = c.HistRows
	if opts.HistRows == 0 {
		opts.HistRows = render.HistRowsForLines(lines, c.Divisions)
	}
	return opts
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidConfig}, args...)...)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setSignedFloat sets a float64 value that may be zero or negative.
func (s *configSetter) setSignedFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setMode parses and sets a display mode if valid and flag not changed.
func (s *configSetter) setMode(flag, value string, dst *render.Mode) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	m, err := render.ParseMode(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = m
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setSignedFloatFromString is setFloatFromString without the positivity filter.
func (s *configSetter) setSignedFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
