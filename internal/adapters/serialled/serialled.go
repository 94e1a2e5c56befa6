// Package serialled drives an indicator light attached to a serial line.
//
// The protocol is one line per state change: "G" for normal, "R" for over
// threshold and "0" for off.
package serialled

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/bft-labs/kingrid/internal/domain"
)

// Indicator implements ports.Indicator over a serial port.
type Indicator struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// Open opens the serial port at path with the given options.
func Open(path string, opts PortOptions) (*Indicator, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open serial port %s: %v", domain.ErrDeviceOpen, path, err)
	}
	return New(port), nil
}

// New wraps an already open port.
func New(port io.WriteCloser) *Indicator {
	return &Indicator{port: port}
}

// Command returns the line written for a state.
func Command(state domain.IndicatorState) string {
	switch state {
	case domain.IndicatorNormal:
		return "G\n"
	case domain.IndicatorOverThreshold:
		return "R\n"
	default:
		return "0\n"
	}
}

// SetIndicator writes the command for state to the port.
func (i *Indicator) SetIndicator(state domain.IndicatorState) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, err := i.port.Write([]byte(Command(state))); err != nil {
		return fmt.Errorf("write indicator %s: %w", state, err)
	}
	return nil
}

// Close closes the port.
func (i *Indicator) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.port.Close()
}
