package render

import (
	"fmt"

	"github.com/bft-labs/kingrid/internal/domain"
)

// Options configures a Renderer.
type Options struct {
	Mode Mode

	// BoxWidth is the text width of one cell, excluding border and padding
	BoxWidth int

	// HistRows is the number of bar rows per cell in histogram mode
	HistRows int

	// HistScale multiplies a bar's share of the region's pixels
	HistScale float64

	// Near and Far are the ascii-art clipping distances in metres
	Near float64
	Far  float64

	// Header prints a timestamp and frame number line before the grid
	Header bool
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeGridStats,
		BoxWidth:  10,
		HistRows:  8,
		HistScale: 2.0,
		Near:      0.5,
		Far:       5.0,
		Header:    true,
	}
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	if _, ok := modeNames[o.Mode]; !ok {
		return fmt.Errorf("%w: unknown display mode %d", domain.ErrInvalidConfig, o.Mode)
	}
	if o.BoxWidth < 1 {
		return fmt.Errorf("%w: box width must be positive", domain.ErrInvalidConfig)
	}
	if o.HistRows < 1 || o.HistRows > domain.HistogramBins {
		return fmt.Errorf("%w: histogram rows must be between 1 and %d", domain.ErrInvalidConfig, domain.HistogramBins)
	}
	if o.HistScale <= 0 {
		return fmt.Errorf("%w: histogram scale must be positive", domain.ErrInvalidConfig)
	}
	if o.Near < 0 || o.Far <= o.Near {
		return fmt.Errorf("%w: clipping planes must satisfy 0 <= near < far (near=%g far=%g)", domain.ErrInvalidConfig, o.Near, o.Far)
	}
	return nil
}

// BoxWidthForColumns sizes grid cells so divisions cells fit in cols
// terminal columns. Each cell costs its width plus a border and two spaces.
func BoxWidthForColumns(cols, divisions int) int {
	if divisions < 1 {
		divisions = 1
	}
	w := (cols-1)/divisions - 3
	if w < 1 {
		return 1
	}
	return w
}

// HistRowsForLines sizes histogram cells so divisions grid rows fit in lines
// terminal lines, leaving room for the header and the closing border.
func HistRowsForLines(lines, divisions int) int {
	if divisions < 1 {
		divisions = 1
	}
	rows := (lines-2)/divisions - 1
	if rows < 1 {
		return 1
	}
	if rows > domain.HistogramBins {
		return domain.HistogramBins
	}
	return rows
}
