package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/bft-labs/kingrid/internal/depthlut"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/grid"
	"github.com/bft-labs/kingrid/internal/ports"
	"github.com/bft-labs/kingrid/internal/render"
)

// ViewerConfig contains configuration for the viewer loop.
type ViewerConfig struct {
	Grid   grid.Config
	Render render.Options

	// Output receives the rendered frames
	Output io.Writer

	// ClearScreen prefixes every frame with a clear-and-home sequence
	ClearScreen bool

	// MaxFrames stops the loop after this many frames; zero means unlimited
	MaxFrames uint64

	// Tilt is applied once at start when the source has a motorised mount.
	// Nil leaves the mount alone.
	Tilt *float64
}

// Viewer reads frames from a source, renders their grid statistics and
// drives the out-of-range indicator.
type Viewer struct {
	config     ViewerConfig
	source     ports.FrameSource
	indicator  ports.Indicator
	logger     ports.Logger
	lifecycle  *Lifecycle
	lut        *depthlut.Table
	aggregator *grid.Aggregator
	renderer   atomic.Pointer[render.Renderer]
	buf        bytes.Buffer
	frames     atomic.Uint64
	state      domain.IndicatorState

	// failed is the state the indicator last refused; it is only
	// meaningful while failing is set
	failed  domain.IndicatorState
	failing bool
}

// NewViewer validates the configuration against the source and builds the
// per-run state. A nil indicator disables indicator updates.
func NewViewer(
	config ViewerConfig,
	source ports.FrameSource,
	indicator ports.Indicator,
	logger ports.Logger,
) (*Viewer, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil frame source", domain.ErrInvalidConfig)
	}
	if config.Output == nil {
		return nil, fmt.Errorf("%w: nil output", domain.ErrInvalidConfig)
	}

	w, h := source.Resolution()
	if w != config.Grid.Width || h != config.Grid.Height {
		return nil, fmt.Errorf("%w: source delivers %dx%d, grid expects %dx%d",
			domain.ErrResolutionMismatch, w, h, config.Grid.Width, config.Grid.Height)
	}

	aggregator, err := grid.NewAggregator(config.Grid)
	if err != nil {
		return nil, err
	}
	lut := depthlut.Build()
	renderer, err := render.New(lut, config.Render)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		config:     config,
		source:     source,
		indicator:  indicator,
		logger:     logger,
		lifecycle:  NewLifecycle(logger),
		lut:        lut,
		aggregator: aggregator,
		state:      domain.IndicatorOff,
	}
	v.renderer.Store(renderer)
	return v, nil
}

// Reconfigure swaps the display options. It is safe to call while Run is
// in progress; the change applies from the next frame.
func (v *Viewer) Reconfigure(opts render.Options) error {
	renderer, err := render.New(v.lut, opts)
	if err != nil {
		return err
	}
	prev := v.renderer.Swap(renderer).Options()
	v.logger.Info("display reconfigured",
		ports.String("previous_mode", prev.Mode.String()),
		ports.String("mode", opts.Mode.String()),
		ports.Int("box_width", opts.BoxWidth),
	)
	return nil
}

// Run streams frames until ctx is canceled, the source is exhausted or
// MaxFrames is reached. The source is closed and the indicator switched off
// before Run returns. A clean stop returns nil.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.lifecycle.TransitionTo(StateStarting, "run"); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	v.lifecycle.SetCancel(cancel)

	v.start()
	_ = v.lifecycle.TransitionTo(StateRunning, "streaming")

	runErr := v.loop(ctx)

	_ = v.lifecycle.TransitionTo(StateStopping, "loop finished")
	err := multierr.Append(runErr, v.teardown())
	if err != nil {
		_ = v.lifecycle.TransitionTo(StateCrashed, err.Error())
		return err
	}
	_ = v.lifecycle.TransitionTo(StateStopped, "clean shutdown")

	v.logger.Info("viewer stopped", ports.Uint64("frames", v.Frames()))
	return nil
}

// Stop asks a running viewer to finish its current frame and return.
func (v *Viewer) Stop() {
	v.lifecycle.Cancel()
}

// Frames returns the number of frames rendered. It is safe to call while
// Run is in progress.
func (v *Viewer) Frames() uint64 {
	return v.frames.Load()
}

// State returns the viewer's lifecycle state.
func (v *Viewer) State() State {
	return v.lifecycle.State()
}

func (v *Viewer) start() {
	v.publish(domain.IndicatorNormal)

	if v.config.Tilt == nil {
		return
	}
	tilter, ok := v.source.(ports.Tilter)
	if !ok {
		return
	}
	if err := tilter.SetTilt(*v.config.Tilt); err != nil {
		v.logger.Warn("set tilt failed", ports.Float64("degrees", *v.config.Tilt), ports.Err(err))
	}
}

func (v *Viewer) loop(ctx context.Context) error {
	for v.config.MaxFrames == 0 || v.Frames() < v.config.MaxFrames {
		frame, err := v.source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, ports.ErrEndOfFrames):
				v.logger.Info("frame source exhausted", ports.Uint64("frames", v.Frames()))
				return nil
			case ctx.Err() != nil:
				return nil
			default:
				return fmt.Errorf("read frame: %w", err)
			}
		}

		over, err := v.show(frame)
		if err != nil {
			return err
		}
		v.publish(domain.IndicatorFor(over))
	}

	v.logger.Info("frame limit reached", ports.Uint64("frames", v.Frames()))
	return nil
}

// show aggregates and renders one frame as a single write.
func (v *Viewer) show(frame domain.Frame) (bool, error) {
	gc := v.aggregator.Config()
	if len(frame.Depth) != gc.Width*gc.Height {
		return false, fmt.Errorf("%w: frame holds %d values, grid expects %dx%d",
			domain.ErrResolutionMismatch, len(frame.Depth), gc.Width, gc.Height)
	}

	stats := v.aggregator.Aggregate(frame)
	seq := v.frames.Add(1)

	v.buf.Reset()
	if v.config.ClearScreen {
		v.buf.WriteString(render.ClearHome)
	}
	over, err := v.renderer.Load().Render(&v.buf, stats, seq)
	if err != nil {
		return false, err
	}
	if _, err := v.config.Output.Write(v.buf.Bytes()); err != nil {
		return false, fmt.Errorf("write frame: %w", err)
	}
	return over, nil
}

// publish forwards state to the indicator when it differs from the last one.
// Indicator failures do not stop the loop. A refused state is retried on
// later frames but only warned about once.
func (v *Viewer) publish(state domain.IndicatorState) {
	if v.indicator == nil || state == v.state {
		return
	}
	if err := v.indicator.SetIndicator(state); err != nil {
		if !v.failing || v.failed != state {
			v.logger.Warn("set indicator failed", ports.String("state", state.String()), ports.Err(err))
		}
		v.failed, v.failing = state, true
		return
	}
	if v.failing {
		v.logger.Info("indicator recovered", ports.String("state", state.String()))
		v.failing = false
	}
	v.state = state
}

func (v *Viewer) teardown() error {
	var err error
	if v.indicator != nil && v.state != domain.IndicatorOff {
		if ierr := v.indicator.SetIndicator(domain.IndicatorOff); ierr != nil {
			err = multierr.Append(err, fmt.Errorf("indicator off: %w", ierr))
		} else {
			v.state = domain.IndicatorOff
		}
	}
	if cerr := v.source.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("close source: %w", cerr))
	}
	return err
}
