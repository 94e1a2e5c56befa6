// Package spool provides a frame source that consumes raw depth frames
// dropped into a directory, one frame per file.
//
// Producers should write each frame to a temporary name and rename it to
// *.raw so the file appears complete. Files that are still short of a full
// frame are retried when fsnotify reports further writes.
package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/kingrid/internal/adapters/rawframe"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// Ext is the file extension of spooled frames.
const Ext = ".raw"

// Options configures a spool source.
type Options struct {
	Width  int
	Height int

	// Remove deletes each file once its frame has been delivered
	Remove bool
}

// Source implements ports.FrameSource over a watched directory.
type Source struct {
	dir     string
	opts    Options
	watcher *fsnotify.Watcher
	pending []string
	queued  map[string]bool
	done    map[string]bool
	frame   domain.Frame
	count   uint32
	closed  bool
	logger  ports.Logger
}

// Open starts watching dir. Frames already present are queued in lexical
// order ahead of any that arrive later.
func Open(dir string, opts Options, logger ports.Logger) (*Source, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("%w: spool frame size %dx%d", domain.ErrInvalidConfig, opts.Width, opts.Height)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: create watcher: %v", domain.ErrSubsystemInit, err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: watch %s: %v", domain.ErrDeviceOpen, dir, err)
	}

	s := &Source{
		dir:     dir,
		opts:    opts,
		watcher: watcher,
		queued:  make(map[string]bool),
		done:    make(map[string]bool),
		logger:  logger,
	}

	existing, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("list spool dir: %w", err)
	}
	sort.Strings(existing)
	for _, path := range existing {
		s.enqueue(path)
	}

	logger.Info("watching spool directory",
		ports.String("dir", dir),
		ports.Int("queued", len(s.pending)),
	)
	return s, nil
}

// Resolution returns the configured frame size.
func (s *Source) Resolution() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Next blocks until a complete frame file is available.
func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}

	for {
		for len(s.pending) > 0 {
			path := s.pending[0]
			s.pending = s.pending[1:]
			delete(s.queued, path)

			ok, err := s.load(path)
			if err != nil {
				s.logger.Warn("skipping spool file", ports.String("path", path), ports.Err(err))
				continue
			}
			if ok {
				return s.frame, nil
			}
		}

		select {
		case <-ctx.Done():
			return domain.Frame{}, ctx.Err()

		case event, ok := <-s.watcher.Events:
			if !ok {
				return domain.Frame{}, ports.ErrEndOfFrames
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			s.enqueue(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return domain.Frame{}, ports.ErrEndOfFrames
			}
			s.logger.Warn("spool watcher error", ports.Err(err))
		}
	}
}

func (s *Source) enqueue(path string) {
	if !strings.HasSuffix(path, Ext) || s.done[path] || s.queued[path] {
		return
	}
	s.queued[path] = true
	s.pending = append(s.pending, path)
}

// load reads one frame file. It reports false without error when the file
// is still being written.
func (s *Source) load(path string) (bool, error) {
	want := rawframe.FrameBytes(s.opts.Width, s.opts.Height)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if len(b) < want {
		return false, nil
	}

	s.done[path] = true
	if len(b) > want {
		return false, fmt.Errorf("%d bytes, want %d", len(b), want)
	}
	if err := rawframe.DecodeInto(&s.frame, b, s.opts.Width, s.opts.Height); err != nil {
		return false, err
	}
	s.frame.Timestamp = s.count
	s.count++

	if s.opts.Remove {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove spool file", ports.String("path", path), ports.Err(err))
		}
	}
	return true, nil
}

// Close stops watching the directory.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.watcher.Close()
}
