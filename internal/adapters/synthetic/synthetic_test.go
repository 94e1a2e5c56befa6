package synthetic

import (
	"context"
	"errors"
	"testing"
	"time"

	logAdapter "github.com/bft-labs/kingrid/internal/adapters/log"
	"github.com/bft-labs/kingrid/internal/depthlut"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/grid"
)

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero width", Options{Width: 0, Height: 4}},
		{"negative fps", Options{Width: 4, Height: 4, FPS: -1}},
		{"band over 100", Options{Width: 4, Height: 4, BandPercent: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, logAdapter.NewNoopLogger())
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestFill_Deterministic(t *testing.T) {
	a := domain.NewFrame(64, 48, 0)
	b := domain.NewFrame(64, 48, 0)
	Fill(&a, 17, 25)
	Fill(&b, 17, 25)
	for i := range a.Depth {
		if a.Depth[i] != b.Depth[i] {
			t.Fatalf("pixel %d differs: %d vs %d", i, a.Depth[i], b.Depth[i])
		}
	}
	if a.Timestamp != 17 {
		t.Errorf("Timestamp = %d, want 17", a.Timestamp)
	}
}

func TestFill_RangeAndBand(t *testing.T) {
	const w, h = 80, 60
	f := domain.NewFrame(w, h, 0)

	for _, tick := range []uint32{0, 1, 9, 150} {
		Fill(&f, tick, 25)

		out := 0
		for _, v := range f.Depth {
			if v == domain.RawSentinel {
				out++
				continue
			}
			if v < rampBase || int(v) > depthlut.MonotonicLimit {
				t.Fatalf("tick %d: value %d outside ramp", tick, v)
			}
		}
		if want := w * 25 / 100 * h; out != want {
			t.Errorf("tick %d: out-of-range pixels = %d, want %d", tick, out, want)
		}
	}
}

func TestFill_BandDrivesThreshold(t *testing.T) {
	agg, err := grid.NewAggregator(grid.DefaultConfig(4))
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}
	f := domain.NewFrame(domain.FrameWidth, domain.FrameHeight, 0)

	Fill(&f, 3, 10)
	if agg.Aggregate(f).OverThreshold() {
		t.Error("10% band should not trip the indicator")
	}
	Fill(&f, 3, 50)
	if !agg.Aggregate(f).OverThreshold() {
		t.Error("50% band should trip the indicator")
	}
}

func TestSource_NextAdvancesTick(t *testing.T) {
	s, err := New(Options{Width: 8, Height: 4, BandPercent: 10}, logAdapter.NewNoopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	for want := uint32(0); want < 3; want++ {
		f, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if f.Timestamp != want {
			t.Errorf("Timestamp = %d, want %d", f.Timestamp, want)
		}
	}
}

func TestSource_PacedNextHonoursContext(t *testing.T) {
	s, err := New(Options{Width: 8, Height: 4, FPS: 0.5}, logAdapter.NewNoopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestSource_NextAfterClose(t *testing.T) {
	s, err := New(Options{Width: 8, Height: 4}, logAdapter.NewNoopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Close()
	if _, err := s.Next(context.Background()); !errors.Is(err, domain.ErrSourceClosed) {
		t.Errorf("Next() error = %v, want ErrSourceClosed", err)
	}
}
