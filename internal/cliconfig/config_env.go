package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (KINGRID_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("divisions", os.Getenv("KINGRID_DIVISIONS"), &cfg.Divisions); err != nil {
		return err
	}
	if err := s.setMode("mode", os.Getenv("KINGRID_MODE"), &cfg.Mode); err != nil {
		return err
	}
	if err := s.setSignedFloatFromString("near", os.Getenv("KINGRID_NEAR"), &cfg.Near); err != nil {
		return err
	}
	if err := s.setFloatFromString("far", os.Getenv("KINGRID_FAR"), &cfg.Far); err != nil {
		return err
	}
	if err := s.setIntFromString("box-width", os.Getenv("KINGRID_BOX_WIDTH"), &cfg.BoxWidth); err != nil {
		return err
	}
	if err := s.setIntFromString("hist-rows", os.Getenv("KINGRID_HIST_ROWS"), &cfg.HistRows); err != nil {
		return err
	}
	if err := s.setFloatFromString("hist-scale", os.Getenv("KINGRID_HIST_SCALE"), &cfg.HistScale); err != nil {
		return err
	}

	s.setString("source", os.Getenv("KINGRID_SOURCE"), &cfg.Source)
	if err := s.setIntFromString("device", os.Getenv("KINGRID_DEVICE"), &cfg.Device); err != nil {
		return err
	}
	s.setString("input", os.Getenv("KINGRID_INPUT"), &cfg.Input)
	s.setBoolFromString("loop", os.Getenv("KINGRID_LOOP"), &cfg.Loop)
	s.setBoolFromString("remove", os.Getenv("KINGRID_REMOVE"), &cfg.Remove)
	if err := s.setFloatFromString("fps", os.Getenv("KINGRID_FPS"), &cfg.FPS); err != nil {
		return err
	}
	if err := s.setSignedFloatFromString("tilt", os.Getenv("KINGRID_TILT"), &cfg.Tilt); err != nil {
		return err
	}

	s.setString("indicator", os.Getenv("KINGRID_INDICATOR"), &cfg.Indicator)
	s.setString("serial-port", os.Getenv("KINGRID_SERIAL_PORT"), &cfg.Serial.Port)
	if err := s.setIntFromString("serial-baud", os.Getenv("KINGRID_SERIAL_BAUD"), &cfg.Serial.Baud); err != nil {
		return err
	}

	if err := s.setIntFromString("frames", os.Getenv("KINGRID_FRAMES"), &cfg.Frames); err != nil {
		return err
	}
	s.setBoolFromString("no-clear", os.Getenv("KINGRID_NO_CLEAR"), &cfg.NoClear)
	s.setBoolFromString("no-header", os.Getenv("KINGRID_NO_HEADER"), &cfg.NoHeader)

	s.setString("log-file", os.Getenv("KINGRID_LOG_FILE"), &cfg.LogFile)
	s.setString("log-level", os.Getenv("KINGRID_LOG_LEVEL"), &cfg.LogLevel)

	return nil
}
