package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"go.uber.org/multierr"

	logAdapter "github.com/bft-labs/kingrid/internal/adapters/log"
	"github.com/bft-labs/kingrid/internal/app"
	"github.com/bft-labs/kingrid/internal/cliconfig"
	"github.com/bft-labs/kingrid/internal/grid"
	"github.com/bft-labs/kingrid/internal/ports"
)

const helpDescription = `
Watch a depth camera as a grid of statistics in your terminal.

Each frame is split into an N x N grid. Every region reports its pixel
count, average, minimum, median and maximum distance and how much of it is
out of range, or is drawn as a depth histogram or a single shaded glyph.
When more than 35% of the frame is out of range the camera LED (or a serial
indicator) switches to blinking red/yellow.

Sources:
  freenect   Kinect through libfreenect (build with -tags freenect)
  synthetic  moving test pattern
  replay     file of raw little-endian 640x480 frames
  spool      directory receiving one *.raw frame per file
`

var exampleUsage = strings.TrimSpace(`
  kingrid -g 4 -m histogram
  kingrid --source replay --input capture.raw --loop --fps 15
  kingrid --source synthetic --indicator serial --serial-port /dev/ttyUSB0
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "kingrid",
		Short:   "Terminal grid view of depth camera statistics",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags parsed; later failures are not usage errors.
			cmd.SilenceUsage = true

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			base := cfg

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file; flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			var reload *reloadSource
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				reload = &reloadSource{path: cfgFile, base: base, changed: changed}
			}
			return run(cfg, reload)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.kingrid/config.toml)")

	root.Flags().IntVarP(&cfg.Divisions, "divisions", "g", cfg.Divisions, "grid divisions along each axis")
	root.Flags().VarP(&cfg.Mode, "mode", "m", "display mode: grid-stats, histogram or ascii-art")
	root.Flags().Float64Var(&cfg.Near, "near", cfg.Near, "ascii-art near clipping distance in metres")
	root.Flags().Float64Var(&cfg.Far, "far", cfg.Far, "ascii-art far clipping distance in metres")
	root.Flags().IntVar(&cfg.BoxWidth, "box-width", cfg.BoxWidth, "cell text width (0 fits the terminal)")
	root.Flags().IntVar(&cfg.HistRows, "hist-rows", cfg.HistRows, "histogram rows per cell (0 fits the terminal)")
	root.Flags().Float64Var(&cfg.HistScale, "hist-scale", cfg.HistScale, "histogram bar scale")

	root.Flags().StringVarP(&cfg.Source, "source", "s", cfg.Source, "frame source: freenect, synthetic, replay or spool")
	root.Flags().IntVar(&cfg.Device, "device", cfg.Device, "camera index")
	root.Flags().StringVarP(&cfg.Input, "input", "i", cfg.Input, "replay file or spool directory")
	root.Flags().BoolVar(&cfg.Loop, "loop", cfg.Loop, "restart replay at end of file")
	root.Flags().BoolVar(&cfg.Remove, "remove", cfg.Remove, "delete spool files once displayed")
	root.Flags().Float64Var(&cfg.FPS, "fps", cfg.FPS, "frame rate for replay and synthetic sources (0 = unpaced)")
	root.Flags().Float64Var(&cfg.Tilt, "tilt", cfg.Tilt, "camera tilt in degrees applied at start")

	root.Flags().StringVar(&cfg.Indicator, "indicator", cfg.Indicator, "out-of-range indicator: device, serial, log or none")
	root.Flags().StringVar(&cfg.Serial.Port, "serial-port", cfg.Serial.Port, "serial port of the external indicator")
	root.Flags().IntVar(&cfg.Serial.Baud, "serial-baud", cfg.Serial.Baud, "serial indicator baud rate (default 115200)")

	root.Flags().IntVarP(&cfg.Frames, "frames", "n", cfg.Frames, "stop after this many frames (0 = unlimited)")
	root.Flags().BoolVar(&cfg.NoClear, "no-clear", cfg.NoClear, "do not clear the screen between frames")
	root.Flags().BoolVar(&cfg.NoHeader, "no-header", cfg.NoHeader, "omit the timestamp and frame number line")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to a rotating file instead of stderr")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("kingrid")
		os.Exit(1)
	}
}

// reloadSource locates the config file whose display settings are applied
// live while the viewer runs.
type reloadSource struct {
	path    string
	base    cliconfig.Config
	changed map[string]bool
}

// run wires the configured source and indicator into a viewer and streams
// until interrupted, the source ends or the frame limit is reached.
func run(cfg cliconfig.Config, reload *reloadSource) (err error) {
	out := logAdapter.NewOutput(cfg.LogFile)
	defer func() { err = multierr.Append(err, out.Close()) }()

	zl, err := logAdapter.NewZerolog(out, cfg.LogLevel)
	if err != nil {
		return err
	}
	zl.Info().Interface("config", cfg).Msg("configuration")
	logger := logAdapter.NewZerologAdapterWithLogger(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := openSource(cfg, logger)
	if err != nil {
		return err
	}

	indicator, closeIndicator, err := openIndicator(cfg, src, logger)
	if err != nil {
		return multierr.Append(err, src.Close())
	}
	defer func() { err = multierr.Append(err, closeIndicator()) }()

	cols, lines := cliconfig.TerminalSize(int(os.Stdout.Fd()))
	vcfg := app.ViewerConfig{
		Grid:        grid.DefaultConfig(cfg.Divisions),
		Render:      cfg.RenderOptions(cols, lines),
		Output:      os.Stdout,
		ClearScreen: !cfg.NoClear,
		MaxFrames:   uint64(cfg.Frames),
	}
	if cfg.Source == cliconfig.SourceFreenect {
		tilt := cfg.Tilt
		vcfg.Tilt = &tilt
	}

	viewer, err := app.NewViewer(vcfg, src, indicator, logger)
	if err != nil {
		return multierr.Append(err, src.Close())
	}

	if reload != nil {
		w := cliconfig.NewWatcher(reload.path, reload.base, reload.changed, logger, func(next cliconfig.Config) {
			if next.Divisions != cfg.Divisions || next.Source != cfg.Source {
				logger.Warn("divisions and source changes take effect after a restart")
			}
			if err := viewer.Reconfigure(next.RenderOptions(cols, lines)); err != nil {
				logger.Warn("display reconfiguration rejected", ports.Err(err))
			}
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("config watcher stopped", ports.Err(err))
			}
		}()
	}

	return viewer.Run(ctx)
}
