// Package render draws per-region depth statistics as terminal text.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bft-labs/kingrid/internal/depthlut"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/grid"
)

// ClearHome moves the cursor home and clears the screen.
const ClearHome = "\x1b[H\x1b[2J"

// asciiPalette holds five distance bands from nearest to farthest, then the
// glyph for an empty region and the glyph for a fully out-of-range region.
const asciiPalette = "@#+-. ?"

const (
	asciiBands    = 5
	asciiEmpty    = 5
	asciiNoRange  = 6
	histogramFill = '#'
)

// Renderer formats grid.Stats according to its Options.
// It holds no per-frame state, so rendering the same stats twice yields
// identical bytes.
type Renderer struct {
	lut  *depthlut.Table
	opts Options
}

// New validates opts and returns a Renderer using lut for unit conversion.
func New(lut *depthlut.Table, opts Options) (*Renderer, error) {
	if lut == nil {
		return nil, fmt.Errorf("%w: nil lookup table", domain.ErrInvalidConfig)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{lut: lut, opts: opts}, nil
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render writes one frame of output for s to w and returns the frame-wide
// over-threshold signal. seq is the frame number shown in the header.
func (r *Renderer) Render(w io.Writer, s *grid.Stats, seq uint64) (bool, error) {
	var b bytes.Buffer

	if r.opts.Header {
		fmt.Fprintf(&b, "Time: %d frame: %d\n", s.Timestamp, seq)
	}

	switch r.opts.Mode {
	case ModeGridStats:
		r.gridStats(&b, s)
	case ModeHistogram:
		r.histogram(&b, s)
	case ModeASCIIArt:
		r.asciiArt(&b, s)
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return false, fmt.Errorf("write frame: %w", err)
	}
	return s.OverThreshold(), nil
}

// hline prints the border between grid rows.
func (r *Renderer) hline(b *bytes.Buffer, divisions int) {
	for i := 0; i < divisions; i++ {
		b.WriteByte('+')
		repeat(b, '-', r.opts.BoxWidth+2)
	}
	b.WriteString("+\n")
}

// entry prints one right-aligned cell, truncated to the box width.
func (r *Renderer) entry(b *bytes.Buffer, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if len(text) > r.opts.BoxWidth {
		text = text[:r.opts.BoxWidth]
	}
	fmt.Fprintf(b, "| %*s ", r.opts.BoxWidth, text)
}

func (r *Renderer) gridStats(b *bytes.Buffer, s *grid.Stats) {
	rows := []func(reg *grid.Region){
		func(reg *grid.Region) { r.entry(b, "Pix %d", reg.Pixels) },
		func(reg *grid.Region) { r.entry(b, "Avg %f", r.lut.Interp(reg.Average)) },
		func(reg *grid.Region) { r.entry(b, "Min %f", r.lut.At(reg.Min)) },
		func(reg *grid.Region) { r.entry(b, "Med ~%f", r.lut.At(reg.Median)) },
		func(reg *grid.Region) { r.entry(b, "Max %f", r.lut.At(reg.Max)) },
		func(reg *grid.Region) { r.entry(b, "Out %d%%", reg.OutOfRangePercent()) },
	}

	for row := 0; row < s.Divisions; row++ {
		r.hline(b, s.Divisions)
		for _, cell := range rows {
			for col := 0; col < s.Divisions; col++ {
				cell(s.At(row, col))
			}
			b.WriteString("|\n")
		}
	}
	r.hline(b, s.Divisions)
}

func (r *Renderer) histogram(b *bytes.Buffer, s *grid.Stats) {
	n := r.opts.HistRows
	for row := 0; row < s.Divisions; row++ {
		r.hline(b, s.Divisions)
		for hr := 0; hr < n; hr++ {
			from := hr * domain.HistogramBins / n
			to := (hr + 1) * domain.HistogramBins / n
			for col := 0; col < s.Divisions; col++ {
				reg := s.At(row, col)
				fill := r.barFill(reg.BinCount(from, to), reg.Pixels)
				b.WriteString("| ")
				repeat(b, histogramFill, fill)
				repeat(b, ' ', r.opts.BoxWidth-fill)
				b.WriteByte(' ')
			}
			b.WriteString("|\n")
		}
	}
	r.hline(b, s.Divisions)
}

// barFill returns the number of filled characters for count of pixels.
func (r *Renderer) barFill(count, pixels int) int {
	if pixels <= 0 || count <= 0 {
		return 0
	}
	share := r.opts.HistScale * float64(count) / float64(pixels)
	if share > 1 {
		share = 1
	}
	return int(float64(r.opts.BoxWidth) * share)
}

func (r *Renderer) asciiArt(b *bytes.Buffer, s *grid.Stats) {
	for row := 0; row < s.Divisions; row++ {
		for col := 0; col < s.Divisions; col++ {
			b.WriteByte(asciiPalette[r.glyph(s.At(row, col))])
		}
		b.WriteByte('\n')
	}
}

// glyph picks the palette index for a region from its nearest reading.
func (r *Renderer) glyph(reg *grid.Region) int {
	if reg.Empty() {
		return asciiEmpty
	}
	if reg.FullyOutOfRange() {
		return asciiNoRange
	}
	if reg.Min > depthlut.MonotonicLimit {
		return asciiBands - 1
	}

	dist := r.lut.At(reg.Min)
	if dist < r.opts.Near {
		return 0
	}
	band := int((dist - r.opts.Near) / (r.opts.Far - r.opts.Near) * asciiBands)
	if band >= asciiBands {
		band = asciiBands - 1
	}
	return band
}

func repeat(b *bytes.Buffer, c byte, count int) {
	for i := 0; i < count; i++ {
		b.WriteByte(c)
	}
}
