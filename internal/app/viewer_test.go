package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/grid"
	"github.com/bft-labs/kingrid/internal/ports"
	"github.com/bft-labs/kingrid/internal/render"
)

const testSize = 4

// fakeSource replays a fixed list of frames, then reports end of frames.
// With repeat set it cycles forever.
type fakeSource struct {
	frames   []domain.Frame
	repeat   bool
	block    bool
	nextErr  error
	closeErr error
	pos      int
	closed   bool
	tilt     *float64
}

func (s *fakeSource) Resolution() (int, int) { return testSize, testSize }

func (s *fakeSource) Next(ctx context.Context) (domain.Frame, error) {
	if s.block {
		<-ctx.Done()
		return domain.Frame{}, ctx.Err()
	}
	if s.nextErr != nil {
		return domain.Frame{}, s.nextErr
	}
	if s.pos >= len(s.frames) {
		if !s.repeat || len(s.frames) == 0 {
			return domain.Frame{}, io.EOF
		}
		s.pos = 0
	}
	f := s.frames[s.pos]
	f.Timestamp = uint32(s.pos)
	s.pos++
	return f, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return s.closeErr
}

type tiltingSource struct {
	fakeSource
}

func (s *tiltingSource) SetTilt(degrees float64) error {
	s.tilt = &degrees
	return nil
}

// fakeIndicator records accepted states. With err set it refuses every
// call, or only the first failFor calls when failFor is positive.
type fakeIndicator struct {
	states   []domain.IndicatorState
	err      error
	failFor  int
	attempts int
}

func (i *fakeIndicator) SetIndicator(state domain.IndicatorState) error {
	i.attempts++
	if i.err != nil && (i.failFor == 0 || i.attempts <= i.failFor) {
		return i.err
	}
	i.states = append(i.states, state)
	return nil
}

func frames(values ...uint16) []domain.Frame {
	out := make([]domain.Frame, len(values))
	for i, v := range values {
		out[i] = domain.NewFrame(testSize, testSize, v)
	}
	return out
}

func testConfig(out io.Writer) ViewerConfig {
	return ViewerConfig{
		Grid: grid.Config{
			Width:     testSize,
			Height:    testSize,
			Divisions: 2,
			Sentinel:  domain.RawSentinel,
		},
		Render: render.DefaultOptions(),
		Output: out,
	}
}

func TestNewViewer_ResolutionMismatch(t *testing.T) {
	cfg := testConfig(io.Discard)
	cfg.Grid.Width = 8

	_, err := NewViewer(cfg, &fakeSource{}, nil, &mockLogger{})
	if !errors.Is(err, domain.ErrResolutionMismatch) {
		t.Errorf("NewViewer() error = %v, want ErrResolutionMismatch", err)
	}
}

func TestNewViewer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ViewerConfig)
	}{
		{"nil output", func(c *ViewerConfig) { c.Output = nil }},
		{"zero divisions", func(c *ViewerConfig) { c.Grid.Divisions = 0 }},
		{"bad box width", func(c *ViewerConfig) { c.Render.BoxWidth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(io.Discard)
			tt.mutate(&cfg)
			_, err := NewViewer(cfg, &fakeSource{}, nil, &mockLogger{})
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("NewViewer() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestViewer_RunUntilEndOfFrames(t *testing.T) {
	var out bytes.Buffer
	src := &fakeSource{frames: frames(1000, 1000, 1000)}
	ind := &fakeIndicator{}

	v, err := NewViewer(testConfig(&out), src, ind, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if v.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", v.Frames())
	}
	if !src.closed {
		t.Error("source should be closed after Run")
	}
	if v.State() != StateStopped {
		t.Errorf("State() = %v, want Stopped", v.State())
	}
	if got := strings.Count(out.String(), "Time: "); got != 3 {
		t.Errorf("rendered %d headers, want 3", got)
	}
	if !strings.Contains(out.String(), "Time: 2 frame: 3\n") {
		t.Errorf("last header missing from output:\n%s", out.String())
	}

	want := []domain.IndicatorState{domain.IndicatorNormal, domain.IndicatorOff}
	if diff := cmp.Diff(want, ind.states); diff != "" {
		t.Errorf("indicator states mismatch (-want +got):\n%s", diff)
	}
}

func TestViewer_IndicatorOnlyOnChange(t *testing.T) {
	sentinel := domain.RawSentinel
	src := &fakeSource{frames: frames(500, sentinel, sentinel, 500, 500)}
	ind := &fakeIndicator{}

	v, err := NewViewer(testConfig(io.Discard), src, ind, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []domain.IndicatorState{
		domain.IndicatorNormal,
		domain.IndicatorOverThreshold,
		domain.IndicatorNormal,
		domain.IndicatorOff,
	}
	if diff := cmp.Diff(want, ind.states); diff != "" {
		t.Errorf("indicator states mismatch (-want +got):\n%s", diff)
	}
}

func TestViewer_MaxFrames(t *testing.T) {
	src := &fakeSource{frames: frames(600, 700), repeat: true}
	cfg := testConfig(io.Discard)
	cfg.MaxFrames = 5

	v, err := NewViewer(cfg, src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", v.Frames())
	}
}

func TestViewer_CancelIsCleanStop(t *testing.T) {
	src := &fakeSource{block: true}
	ind := &fakeIndicator{}
	v, err := NewViewer(testConfig(io.Discard), src, ind, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := v.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil on cancellation", err)
	}
	if !src.closed {
		t.Error("source should be closed after cancellation")
	}
	if last := ind.states[len(ind.states)-1]; last != domain.IndicatorOff {
		t.Errorf("last indicator state = %v, want Off", last)
	}
}

func TestViewer_Stop(t *testing.T) {
	src := &fakeSource{block: true}
	v, err := NewViewer(testConfig(io.Discard), src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for v.State() != StateRunning && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	v.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Stop()")
	}
}

func TestViewer_SourceErrorCombinedWithCloseError(t *testing.T) {
	readErr := errors.New("usb reset")
	closeErr := errors.New("close failed")
	src := &fakeSource{nextErr: readErr, closeErr: closeErr}

	v, err := NewViewer(testConfig(io.Discard), src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}

	err = v.Run(context.Background())
	if !errors.Is(err, readErr) {
		t.Errorf("Run() error = %v, want to wrap %v", err, readErr)
	}
	if !errors.Is(err, closeErr) {
		t.Errorf("Run() error = %v, want to wrap %v", err, closeErr)
	}
	if v.State() != StateCrashed {
		t.Errorf("State() = %v, want Crashed", v.State())
	}
}

// warnCounter counts Warn calls and drops everything else.
type warnCounter struct {
	mockLogger
	warns []string
}

func (w *warnCounter) Warn(msg string, _ ...ports.Field) {
	w.warns = append(w.warns, msg)
}

func TestViewer_IndicatorErrorDoesNotStopLoop(t *testing.T) {
	src := &fakeSource{frames: frames(500, 500, 500, 500, 500)}
	ind := &fakeIndicator{err: errors.New("led unplugged")}
	logger := &warnCounter{}

	v, err := NewViewer(testConfig(io.Discard), src, ind, logger)
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", v.Frames())
	}
	// Once at start, then once per frame.
	if ind.attempts != 6 {
		t.Errorf("indicator attempts = %d, want 6", ind.attempts)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %q, want a single warning", logger.warns)
	}
}

func TestViewer_IndicatorRecovers(t *testing.T) {
	sentinel := domain.RawSentinel
	src := &fakeSource{frames: frames(500, 500, sentinel, sentinel)}
	ind := &fakeIndicator{err: errors.New("led unplugged"), failFor: 2}
	logger := &warnCounter{}

	v, err := NewViewer(testConfig(io.Discard), src, ind, logger)
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []domain.IndicatorState{
		domain.IndicatorNormal,
		domain.IndicatorOverThreshold,
		domain.IndicatorOff,
	}
	if diff := cmp.Diff(want, ind.states); diff != "" {
		t.Errorf("indicator states mismatch (-want +got):\n%s", diff)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %q, want a single warning", logger.warns)
	}
}

func TestViewer_FramesDuringRun(t *testing.T) {
	src := &fakeSource{frames: frames(600), repeat: true}
	cfg := testConfig(io.Discard)
	cfg.MaxFrames = 200

	v, err := NewViewer(cfg, src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	var last uint64
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := v.Frames(); got != 200 {
				t.Errorf("Frames() = %d, want 200", got)
			}
			return
		default:
		}
		n := v.Frames()
		if n < last {
			t.Fatalf("Frames() went backwards: %d after %d", n, last)
		}
		last = n
	}
}

func TestViewer_ClearScreen(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	cfg.ClearScreen = true

	v, err := NewViewer(cfg, &fakeSource{frames: frames(800, 800)}, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.HasPrefix(out.String(), render.ClearHome) {
		t.Error("output should start with the clear sequence")
	}
	if got := strings.Count(out.String(), render.ClearHome); got != 2 {
		t.Errorf("clear sequences = %d, want 2", got)
	}
}

func TestViewer_AppliesTilt(t *testing.T) {
	src := &tiltingSource{fakeSource{frames: frames(500)}}
	cfg := testConfig(io.Discard)
	tilt := -5.0
	cfg.Tilt = &tilt

	v, err := NewViewer(cfg, src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if src.tilt == nil || *src.tilt != -5 {
		t.Errorf("tilt = %v, want -5", src.tilt)
	}
}

func TestViewer_ShortFrame(t *testing.T) {
	src := &fakeSource{frames: []domain.Frame{domain.NewFrame(2, 2, 500)}}
	v, err := NewViewer(testConfig(io.Discard), src, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}
	if err := v.Run(context.Background()); !errors.Is(err, domain.ErrResolutionMismatch) {
		t.Errorf("Run() error = %v, want ErrResolutionMismatch", err)
	}
}

func TestViewer_Reconfigure(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	cfg.Render.Header = false

	v, err := NewViewer(cfg, &fakeSource{frames: frames(500)}, nil, &mockLogger{})
	if err != nil {
		t.Fatalf("NewViewer() error = %v", err)
	}

	bad := render.DefaultOptions()
	bad.Far = 0
	if err := v.Reconfigure(bad); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("Reconfigure() error = %v, want ErrInvalidConfig", err)
	}

	opts := render.DefaultOptions()
	opts.Mode = render.ModeASCIIArt
	opts.Header = false
	if err := v.Reconfigure(opts); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Raw 500 is about 0.58m, inside the nearest band.
	if got, want := out.String(), "@@\n@@\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
