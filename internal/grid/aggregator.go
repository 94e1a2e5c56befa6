package grid

import (
	"github.com/bft-labs/kingrid/internal/domain"
)

// Aggregator computes Stats for frames of a fixed geometry.
// It keeps no state between frames.
type Aggregator struct {
	cfg Config
}

// NewAggregator validates cfg and returns an Aggregator.
func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{cfg: cfg}, nil
}

// Config returns the aggregator's configuration.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// Aggregate computes the statistics of one frame in a single pass.
// The frame must hold exactly Width*Height values; resolution is checked
// once when the frame source is attached, not per frame.
func (a *Aggregator) Aggregate(frame domain.Frame) *Stats {
	cfg := a.cfg
	d := cfg.Divisions
	levels := int(cfg.Sentinel) + 1

	s := &Stats{
		Divisions: d,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Sentinel:  cfg.Sentinel,
		Timestamp: frame.Timestamp,
		Regions:   make([]Region, cfg.Regions()),
	}
	for i := range s.Regions {
		s.Regions[i].Min = cfg.Sentinel
	}

	for i, v := range frame.Depth {
		row := i / cfg.Width
		col := i % cfg.Width
		r := &s.Regions[(row*d/cfg.Height)*d+col*d/cfg.Width]
		r.Pixels++

		if v == cfg.Sentinel {
			r.OutOfRange++
			s.OutOfRange++
			continue
		}

		r.Sum += uint64(v)
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
		bin := int(v) * domain.HistogramBins / levels
		if bin >= domain.HistogramBins {
			bin = domain.HistogramBins - 1
		}
		r.Histogram[bin]++
	}
	s.Pixels = len(frame.Depth)

	for i := range s.Regions {
		finish(&s.Regions[i], cfg.Sentinel)
	}
	return s
}

// finish derives average and approximate median once all pixels are counted.
func finish(r *Region, sentinel uint16) {
	inRange := r.InRange()
	if inRange <= 0 {
		r.Min = sentinel
		r.Max = sentinel
		r.Average = float64(sentinel)
		r.Median = sentinel
		r.MedianBin = domain.HistogramBins - 1
		return
	}

	r.Average = float64(r.Sum) / float64(inRange)

	bin, running := 0, 0
	for ; bin < domain.HistogramBins; bin++ {
		running += r.Histogram[bin]
		if running*2 >= inRange {
			break
		}
	}
	r.MedianBin = bin
	r.Median = uint16(bin * (int(sentinel) + 1) / domain.HistogramBins)
}
