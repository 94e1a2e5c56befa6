package domain

const (
	// FrameWidth is the depth camera's horizontal resolution in pixels.
	FrameWidth = 640

	// FrameHeight is the depth camera's vertical resolution in pixels.
	FrameHeight = 480

	// RawLevels is the number of distinct raw depth units (11 bits).
	RawLevels = 2048

	// RawSentinel is the raw value reported for pixels out of measurable range.
	RawSentinel uint16 = RawLevels - 1

	// HistogramBins is the number of coarse histogram bins kept per region.
	HistogramBins = 32

	// OutOfRangeThresholdPercent is the frame-wide out-of-range share above
	// which the indicator switches to the over-threshold state.
	OutOfRangeThresholdPercent = 35
)

// Frame is a single depth frame.
// Depth is row-major and holds Width*Height raw sensor units.
type Frame struct {
	// Width is the frame width in pixels
	Width int

	// Height is the frame height in pixels
	Height int

	// Depth holds the raw 11-bit depth values
	Depth []uint16

	// Timestamp is the sensor clock value attached to the frame
	Timestamp uint32
}

// NewFrame allocates a frame of the given resolution with every pixel set to value.
func NewFrame(width, height int, value uint16) Frame {
	depth := make([]uint16, width*height)
	for i := range depth {
		depth[i] = value
	}
	return Frame{Width: width, Height: height, Depth: depth}
}

// Pixels returns the number of pixels in the frame.
func (f Frame) Pixels() int {
	return f.Width * f.Height
}

// Valid reports whether the depth buffer matches the declared resolution.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Depth) == f.Width*f.Height
}

// OverThreshold reports whether strictly more than
// OutOfRangeThresholdPercent of pixels are out of range.
// Exactly the threshold is not over it.
func OverThreshold(outOfRange, pixels int) bool {
	if pixels <= 0 {
		return false
	}
	return outOfRange*100 > pixels*OutOfRangeThresholdPercent
}
