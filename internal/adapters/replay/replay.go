// Package replay provides a frame source that plays back raw depth frames
// from a file.
package replay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bft-labs/kingrid/internal/adapters/rawframe"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// Options configures playback.
type Options struct {
	Width  int
	Height int

	// Loop restarts from the first frame at end of file
	Loop bool

	// FPS paces delivery; zero delivers frames as fast as they are read
	FPS float64
}

// Source implements ports.FrameSource over a file of raw frames.
type Source struct {
	opts     Options
	file     *os.File
	dec      *rawframe.Decoder
	frame    domain.Frame
	interval time.Duration
	last     time.Time
	count    uint32
	closed   bool
	logger   ports.Logger
}

// Open opens path for playback.
func Open(path string, opts Options, logger ports.Logger) (*Source, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("%w: replay frame size %dx%d", domain.ErrInvalidConfig, opts.Width, opts.Height)
	}
	if opts.FPS < 0 {
		return nil, fmt.Errorf("%w: negative replay fps", domain.ErrInvalidConfig)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open replay file: %v", domain.ErrDeviceOpen, err)
	}

	s := &Source{
		opts:   opts,
		file:   f,
		dec:    rawframe.NewDecoder(bufio.NewReader(f), opts.Width, opts.Height),
		logger: logger,
	}
	if opts.FPS > 0 {
		s.interval = time.Duration(float64(time.Second) / opts.FPS)
	}

	logger.Info("replaying frames",
		ports.String("path", path),
		ports.Bool("loop", opts.Loop),
		ports.Float64("fps", opts.FPS),
	)
	return s, nil
}

// Resolution returns the configured frame size.
func (s *Source) Resolution() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Next returns the next frame in the file.
func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}
	if err := s.pace(ctx); err != nil {
		return domain.Frame{}, err
	}

	err := s.dec.Decode(&s.frame)
	if errors.Is(err, io.EOF) && s.opts.Loop && s.count > 0 {
		if err := s.rewind(); err != nil {
			return domain.Frame{}, err
		}
		err = s.dec.Decode(&s.frame)
	}
	if err != nil {
		return domain.Frame{}, err
	}

	s.frame.Timestamp = s.count
	s.count++
	s.last = time.Now()
	return s.frame, nil
}

// pace waits until the next frame is due.
func (s *Source) pace(ctx context.Context) error {
	if s.interval <= 0 || s.last.IsZero() {
		return ctx.Err()
	}
	wait := time.Until(s.last.Add(s.interval))
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Source) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind replay file: %w", err)
	}
	s.dec.Reset(bufio.NewReader(s.file))
	s.logger.Debug("replay looped", ports.Int("frames", int(s.count)))
	return nil
}

// Close closes the underlying file.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
