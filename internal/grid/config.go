package grid

import (
	"fmt"

	"github.com/bft-labs/kingrid/internal/domain"
)

// Config describes the frame geometry and grid partition.
// It is fixed for the lifetime of a run.
type Config struct {
	Width     int
	Height    int
	Divisions int
	Sentinel  uint16
}

// DefaultConfig returns the configuration for a full-resolution camera frame.
func DefaultConfig(divisions int) Config {
	return Config{
		Width:     domain.FrameWidth,
		Height:    domain.FrameHeight,
		Divisions: divisions,
		Sentinel:  domain.RawSentinel,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Divisions < 1 {
		return fmt.Errorf("%w: divisions must be at least 1, got %d", domain.ErrInvalidConfig, c.Divisions)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: frame size %dx%d", domain.ErrInvalidConfig, c.Width, c.Height)
	}
	if int(c.Sentinel) >= domain.RawLevels {
		return fmt.Errorf("%w: sentinel %d outside raw range", domain.ErrInvalidConfig, c.Sentinel)
	}
	return nil
}

// Regions returns the number of grid cells.
func (c Config) Regions() int {
	return c.Divisions * c.Divisions
}
