// Package synthetic provides a frame source that generates a moving test
// pattern. It is used when no camera is attached.
package synthetic

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

const (
	// rampBase and rampSpan keep the ramp inside the monotonic part of the
	// distance table (roughly 0.5m to 6m).
	rampBase = 440
	rampSpan = 480

	// sweepStep is how many columns the out-of-range band moves per frame.
	sweepStep = 4
)

// Options configures the generated pattern.
type Options struct {
	Width  int
	Height int

	// FPS paces delivery; zero generates frames back to back
	FPS float64

	// BandPercent is the share of columns covered by the out-of-range band
	BandPercent int
}

// DefaultOptions returns a full-resolution pattern at 30 frames per second.
func DefaultOptions() Options {
	return Options{
		Width:       domain.FrameWidth,
		Height:      domain.FrameHeight,
		FPS:         30,
		BandPercent: 10,
	}
}

// Source implements ports.FrameSource by synthesising frames.
type Source struct {
	opts   Options
	frame  domain.Frame
	ticker *time.Ticker
	tick   uint32
	closed bool
}

// New creates a synthetic source.
func New(opts Options, logger ports.Logger) (*Source, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("%w: synthetic frame size %dx%d", domain.ErrInvalidConfig, opts.Width, opts.Height)
	}
	if opts.FPS < 0 {
		return nil, fmt.Errorf("%w: negative synthetic fps", domain.ErrInvalidConfig)
	}
	if opts.BandPercent < 0 || opts.BandPercent > 100 {
		return nil, fmt.Errorf("%w: band percent %d outside 0..100", domain.ErrInvalidConfig, opts.BandPercent)
	}

	s := &Source{
		opts:  opts,
		frame: domain.NewFrame(opts.Width, opts.Height, 0),
	}
	if opts.FPS > 0 {
		s.ticker = time.NewTicker(time.Duration(float64(time.Second) / opts.FPS))
	}

	logger.Info("generating synthetic frames",
		ports.Int("width", opts.Width),
		ports.Int("height", opts.Height),
		ports.Float64("fps", opts.FPS),
	)
	return s, nil
}

// Resolution returns the configured frame size.
func (s *Source) Resolution() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Next generates the next frame, waiting for the ticker when paced.
func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}
	if s.ticker != nil && s.tick > 0 {
		select {
		case <-ctx.Done():
			return domain.Frame{}, ctx.Err()
		case <-s.ticker.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.Frame{}, err
	}

	Fill(&s.frame, s.tick, s.opts.BandPercent)
	s.tick++
	return s.frame, nil
}

// Close stops the ticker.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ticker != nil {
		s.ticker.Stop()
	}
	return nil
}

// Fill draws the pattern for the given tick into f.
// Rows ramp from near to far and drift with the tick. A vertical band of
// out-of-range pixels sweeps left to right.
func Fill(f *domain.Frame, tick uint32, bandPercent int) {
	w, h := f.Width, f.Height
	bandCols := w * bandPercent / 100
	offset := int(tick) * sweepStep % w
	drift := int(tick) * sweepStep

	for y := 0; y < h; y++ {
		row := f.Depth[y*w : (y+1)*w]
		base := rampBase + (y*rampSpan/h+drift)%rampSpan
		for x := range row {
			if (x-offset+w)%w < bandCols {
				row[x] = domain.RawSentinel
				continue
			}
			row[x] = uint16(base + x*rampSpan/(4*w))
		}
	}
	f.Timestamp = tick
}
