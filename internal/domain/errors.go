package domain

import "errors"

// Domain errors represent error conditions in the kingrid domain.
// These errors are returned wrapped and can be checked with errors.Is.
var (
	// ErrSubsystemInit is returned when the camera subsystem cannot be initialized.
	ErrSubsystemInit = errors.New("kingrid: camera subsystem init failed")

	// ErrNoDevice is returned when no camera is attached.
	ErrNoDevice = errors.New("kingrid: no camera devices present")

	// ErrDeviceOpen is returned when a camera is present but cannot be opened.
	ErrDeviceOpen = errors.New("kingrid: camera open failed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("kingrid: invalid configuration")

	// ErrResolutionMismatch is returned when a frame source delivers a
	// resolution other than the one the grid was configured for.
	ErrResolutionMismatch = errors.New("kingrid: frame resolution mismatch")

	// ErrSourceClosed is returned by Next after Close.
	ErrSourceClosed = errors.New("kingrid: frame source closed")

	// ErrAlreadyRunning is returned when Run is called on a running viewer.
	ErrAlreadyRunning = errors.New("kingrid: viewer already running")

	// ErrNotRunning is returned for a lifecycle transition that requires a
	// running viewer.
	ErrNotRunning = errors.New("kingrid: viewer not running")
)
