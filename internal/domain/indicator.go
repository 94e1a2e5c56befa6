package domain

// IndicatorState is the signal published to the indicator light.
type IndicatorState int

const (
	// IndicatorOff turns the indicator off. Used on shutdown.
	IndicatorOff IndicatorState = iota

	// IndicatorNormal means the frame is mostly within measurable range.
	IndicatorNormal

	// IndicatorOverThreshold means too much of the frame is out of range.
	IndicatorOverThreshold
)

// String returns a human-readable representation of the state.
func (s IndicatorState) String() string {
	switch s {
	case IndicatorOff:
		return "Off"
	case IndicatorNormal:
		return "Normal"
	case IndicatorOverThreshold:
		return "OverThreshold"
	default:
		return "Unknown"
	}
}

// IndicatorFor maps the over-threshold signal to an indicator state.
func IndicatorFor(overThreshold bool) IndicatorState {
	if overThreshold {
		return IndicatorOverThreshold
	}
	return IndicatorNormal
}
