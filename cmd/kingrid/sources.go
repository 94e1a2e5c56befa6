package main

import (
	"fmt"

	"github.com/bft-labs/kingrid/internal/adapters/freenect"
	"github.com/bft-labs/kingrid/internal/adapters/logindicator"
	"github.com/bft-labs/kingrid/internal/adapters/replay"
	"github.com/bft-labs/kingrid/internal/adapters/serialled"
	"github.com/bft-labs/kingrid/internal/adapters/spool"
	"github.com/bft-labs/kingrid/internal/adapters/synthetic"
	"github.com/bft-labs/kingrid/internal/cliconfig"
	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// openSource opens the frame source named by cfg.Source.
func openSource(cfg cliconfig.Config, logger ports.Logger) (ports.FrameSource, error) {
	w, h := domain.FrameWidth, domain.FrameHeight

	switch cfg.Source {
	case cliconfig.SourceFreenect:
		return freenect.Open(cfg.Device, logger)
	case cliconfig.SourceSynthetic:
		opts := synthetic.DefaultOptions()
		opts.FPS = cfg.FPS
		return synthetic.New(opts, logger)
	case cliconfig.SourceReplay:
		return replay.Open(cfg.Input, replay.Options{Width: w, Height: h, Loop: cfg.Loop, FPS: cfg.FPS}, logger)
	case cliconfig.SourceSpool:
		return spool.Open(cfg.Input, spool.Options{Width: w, Height: h, Remove: cfg.Remove}, logger)
	}
	return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidConfig, cfg.Source)
}

func noClose() error { return nil }

// openIndicator builds the indicator named by cfg.Indicator. The returned
// close function releases anything the indicator owns beyond the source.
func openIndicator(cfg cliconfig.Config, src ports.FrameSource, logger ports.Logger) (ports.Indicator, func() error, error) {
	switch cfg.Indicator {
	case cliconfig.IndicatorDevice:
		ind, ok := src.(ports.Indicator)
		if !ok {
			return nil, nil, fmt.Errorf("%w: source %s has no indicator", domain.ErrInvalidConfig, cfg.Source)
		}
		return ind, noClose, nil
	case cliconfig.IndicatorSerial:
		ind, err := serialled.Open(cfg.Serial.Port, serialled.PortOptions{
			BaudRate: cfg.Serial.Baud,
			DataBits: cfg.Serial.DataBits,
			StopBits: cfg.Serial.StopBits,
			Parity:   cfg.Serial.Parity,
		})
		if err != nil {
			return nil, nil, err
		}
		return ind, ind.Close, nil
	case cliconfig.IndicatorLog:
		return logindicator.New(logger), noClose, nil
	case cliconfig.IndicatorNone:
		return nil, noClose, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown indicator %q", domain.ErrInvalidConfig, cfg.Indicator)
}
