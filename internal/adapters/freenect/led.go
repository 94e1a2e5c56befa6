package freenect

import "github.com/bft-labs/kingrid/internal/domain"

// LED mirrors libfreenect's freenect_led_options.
type LED int

const (
	LEDOff            LED = 0
	LEDGreen          LED = 1
	LEDRed            LED = 2
	LEDYellow         LED = 3
	LEDBlinkGreen     LED = 4
	LEDBlinkRedYellow LED = 6
)

// DefaultTilt is the mount angle applied when streaming starts, in degrees.
const DefaultTilt = -5.0

// LEDFor maps an indicator state to the camera LED.
func LEDFor(state domain.IndicatorState) LED {
	switch state {
	case domain.IndicatorNormal:
		return LEDGreen
	case domain.IndicatorOverThreshold:
		return LEDBlinkRedYellow
	default:
		return LEDOff
	}
}
