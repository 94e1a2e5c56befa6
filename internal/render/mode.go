package render

import (
	"fmt"
	"strings"

	"github.com/bft-labs/kingrid/internal/domain"
)

// Mode selects how region statistics are drawn.
type Mode int

const (
	// ModeGridStats prints a bordered table of statistics per region.
	ModeGridStats Mode = iota

	// ModeHistogram prints a bar chart of each region's depth histogram.
	ModeHistogram

	// ModeASCIIArt prints one character per region shaded by distance.
	ModeASCIIArt
)

var modeNames = map[Mode]string{
	ModeGridStats: "grid-stats",
	ModeHistogram: "histogram",
	ModeASCIIArt:  "ascii-art",
}

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode parses a mode name. Single-letter abbreviations g, h and a are
// accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid-stats", "grid", "g":
		return ModeGridStats, nil
	case "histogram", "hist", "h":
		return ModeHistogram, nil
	case "ascii-art", "ascii", "a":
		return ModeASCIIArt, nil
	}
	return ModeGridStats, fmt.Errorf("%w: unknown display mode %q (want grid-stats, histogram or ascii-art)", domain.ErrInvalidConfig, s)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}

// MarshalText implements encoding.TextMarshaler so modes log and serialize
// by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	return m.Set(string(b))
}
