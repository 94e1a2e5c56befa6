// Package logindicator provides an indicator that records state changes in
// the log instead of driving a light.
package logindicator

import (
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// Indicator implements ports.Indicator by logging.
type Indicator struct {
	logger  ports.Logger
	state   domain.IndicatorState
	started bool
}

// New creates a logging indicator.
func New(logger ports.Logger) *Indicator {
	return &Indicator{logger: logger}
}

// SetIndicator logs the transition. Repeated states are not logged.
func (i *Indicator) SetIndicator(state domain.IndicatorState) error {
	if i.started && state == i.state {
		return nil
	}

	fields := []ports.Field{ports.String("state", state.String())}
	if i.started {
		fields = append(fields, ports.String("previous", i.state.String()))
	}
	if state == domain.IndicatorOverThreshold {
		i.logger.Warn("out-of-range share over threshold", fields...)
	} else {
		i.logger.Info("indicator changed", fields...)
	}

	i.state = state
	i.started = true
	return nil
}

// State returns the last state set.
func (i *Indicator) State() domain.IndicatorState {
	return i.state
}
