package grid

import "github.com/bft-labs/kingrid/internal/domain"

// Region holds the statistics of one grid cell for one frame.
// Raw values are sensor units; use a depthlut.Table to convert to metres.
type Region struct {
	// Pixels is the number of frame pixels assigned to the region
	Pixels int

	// OutOfRange is the number of sentinel pixels in the region
	OutOfRange int

	// Sum is the sum of in-range raw values
	Sum uint64

	// Min and Max are the in-range extremes, or the sentinel when the
	// region has no in-range pixel
	Min uint16
	Max uint16

	// Average is Sum / InRange, or the sentinel when InRange is zero
	Average float64

	// Median is the lower raw edge of MedianBin
	Median uint16

	// MedianBin is the histogram bin holding the approximate median
	MedianBin int

	// Histogram counts in-range values per coarse bin
	Histogram [domain.HistogramBins]int
}

// InRange returns the number of pixels with a valid reading.
func (r *Region) InRange() int {
	return r.Pixels - r.OutOfRange
}

// Empty reports whether no pixel was assigned to the region.
// This happens when Divisions exceeds the frame width or height.
func (r *Region) Empty() bool {
	return r.Pixels == 0
}

// FullyOutOfRange reports whether the region has no in-range pixel.
// Empty regions count as fully out of range.
func (r *Region) FullyOutOfRange() bool {
	return r.OutOfRange >= r.Pixels
}

// OutOfRangePercent returns the integer out-of-range share of the region.
func (r *Region) OutOfRangePercent() int {
	if r.Pixels == 0 {
		return 0
	}
	return r.OutOfRange * 100 / r.Pixels
}

// BinCount returns the sum of histogram bins in [from, to).
func (r *Region) BinCount(from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(r.Histogram) {
		to = len(r.Histogram)
	}
	n := 0
	for i := from; i < to; i++ {
		n += r.Histogram[i]
	}
	return n
}

// Stats holds the aggregated statistics of one frame.
type Stats struct {
	Divisions int
	Width     int
	Height    int
	Sentinel  uint16
	Timestamp uint32

	// Regions is row-major, Divisions*Divisions long
	Regions []Region

	// Pixels and OutOfRange are frame-wide totals
	Pixels     int
	OutOfRange int
}

// At returns the region at grid row and column.
func (s *Stats) At(row, col int) *Region {
	return &s.Regions[row*s.Divisions+col]
}

// OverThreshold reports whether the frame-wide out-of-range share exceeds
// the indicator threshold. It does not depend on the grid partition.
func (s *Stats) OverThreshold() bool {
	return domain.OverThreshold(s.OutOfRange, s.Pixels)
}
