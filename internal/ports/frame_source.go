package ports

import (
	"context"
	"io"

	"github.com/bft-labs/kingrid/internal/domain"
)

// FrameSource delivers depth frames of a fixed resolution.
type FrameSource interface {
	// Resolution returns the width and height of every frame this source
	// delivers. It is checked once against the grid configuration.
	Resolution() (width, height int)

	// Next blocks until the next frame is available.
	// Returns io.EOF when the source is exhausted.
	// Returns ctx.Err() when the context is canceled while waiting.
	// The returned frame is only valid until the next call to Next.
	Next(ctx context.Context) (domain.Frame, error)

	// Close stops streaming and releases all resources held by the source.
	Close() error
}

// ErrEndOfFrames indicates that the source has no more frames.
var ErrEndOfFrames = io.EOF
