package serialled

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// PortOptions describes the serial line the indicator is attached to.
// Zero values select 115200 baud, 8 data bits, 1 stop bit and no parity.
type PortOptions struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// DefaultBaudRate is used when no baud rate is configured.
const DefaultBaudRate = 115200

// serial.StopBits is an enum, not a count.
var stopBits = map[int]serial.StopBits{
	1: serial.OneStopBit,
	2: serial.TwoStopBits,
}

var parities = map[string]serial.Parity{
	"N": serial.NoParity,
	"E": serial.EvenParity,
	"O": serial.OddParity,
}

func parityCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "NONE":
		return "N"
	case "EVEN":
		return "E"
	case "ODD":
		return "O"
	}
	return s
}

// Normalize fills in defaults and rejects line settings the indicator
// cannot use.
func (o PortOptions) Normalize() (PortOptions, error) {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.DataBits == 0 {
		o.DataBits = 8
	}
	if o.StopBits == 0 {
		o.StopBits = 1
	}
	parity := o.Parity
	o.Parity = parityCode(parity)

	if o.DataBits < 5 || o.DataBits > 8 {
		return o, fmt.Errorf("data bits %d out of range 5-8", o.DataBits)
	}
	if _, ok := stopBits[o.StopBits]; !ok {
		return o, fmt.Errorf("stop bits %d not supported, use 1 or 2", o.StopBits)
	}
	if _, ok := parities[o.Parity]; !ok {
		return o, fmt.Errorf("parity %q not supported, use none, even or odd", parity)
	}
	return o, nil
}

// SerialMode converts the options into the mode go.bug.st/serial opens with.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: stopBits[opts.StopBits],
		Parity:   parities[opts.Parity],
	}, nil
}
