package ports

import "github.com/bft-labs/kingrid/internal/domain"

// Indicator drives the light that signals too much of the frame being out
// of range.
type Indicator interface {
	// SetIndicator switches the light to the given state.
	SetIndicator(state domain.IndicatorState) error
}

// Tilter is implemented by sources with a motorised mount.
type Tilter interface {
	// SetTilt moves the mount to the given angle in degrees.
	SetTilt(degrees float64) error
}
