//go:build !freenect || !cgo

package freenect

import (
	"context"
	"fmt"

	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// Source is unavailable in builds without the freenect tag.
type Source struct{}

// Open always fails: the binary was built without libfreenect.
func Open(index int, logger ports.Logger) (*Source, error) {
	return nil, fmt.Errorf("%w: built without libfreenect support (rebuild with -tags freenect)", domain.ErrSubsystemInit)
}

func (s *Source) Resolution() (int, int) { return 0, 0 }

func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	return domain.Frame{}, domain.ErrSourceClosed
}

func (s *Source) SetIndicator(state domain.IndicatorState) error { return domain.ErrSourceClosed }

func (s *Source) SetTilt(degrees float64) error { return domain.ErrSourceClosed }

func (s *Source) Close() error { return nil }
