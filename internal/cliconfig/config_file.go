package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config in a TOML friendly shape. Pointers distinguish
// an explicit zero or false from an absent key.
type FileConfig struct {
	Divisions int      `toml:"divisions"`
	Mode      string   `toml:"mode"`
	Near      *float64 `toml:"near"`
	Far       float64  `toml:"far"`
	BoxWidth  int      `toml:"box_width"`
	HistRows  int      `toml:"hist_rows"`
	HistScale float64  `toml:"hist_scale"`

	Source string   `toml:"source"`
	Device int      `toml:"device"`
	Input  string   `toml:"input"`
	Loop   *bool    `toml:"loop"`
	Remove *bool    `toml:"remove"`
	FPS    float64  `toml:"fps"`
	Tilt   *float64 `toml:"tilt"`

	Indicator string     `toml:"indicator"`
	Serial    FileSerial `toml:"serial"`

	Frames   int   `toml:"frames"`
	NoClear  *bool `toml:"no_clear"`
	NoHeader *bool `toml:"no_header"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// FileSerial is the [serial] table of the config file.
type FileSerial struct {
	Port     string `toml:"port"`
	Baud     int    `toml:"baud"`
	DataBits int    `toml:"data_bits"`
	StopBits int    `toml:"stop_bits"`
	Parity   string `toml:"parity"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.kingrid/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".kingrid", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("divisions", fc.Divisions, &cfg.Divisions)
	if err := s.setMode("mode", fc.Mode, &cfg.Mode); err != nil {
		return err
	}
	s.setSignedFloat("near", fc.Near, &cfg.Near)
	s.setFloat("far", fc.Far, &cfg.Far)
	s.setInt("box-width", fc.BoxWidth, &cfg.BoxWidth)
	s.setInt("hist-rows", fc.HistRows, &cfg.HistRows)
	s.setFloat("hist-scale", fc.HistScale, &cfg.HistScale)

	s.setString("source", fc.Source, &cfg.Source)
	s.setInt("device", fc.Device, &cfg.Device)
	s.setString("input", fc.Input, &cfg.Input)
	s.setBool("loop", fc.Loop, &cfg.Loop)
	s.setBool("remove", fc.Remove, &cfg.Remove)
	s.setFloat("fps", fc.FPS, &cfg.FPS)
	s.setSignedFloat("tilt", fc.Tilt, &cfg.Tilt)

	s.setString("indicator", fc.Indicator, &cfg.Indicator)
	s.setString("serial-port", fc.Serial.Port, &cfg.Serial.Port)
	s.setInt("serial-baud", fc.Serial.Baud, &cfg.Serial.Baud)
	s.setInt("serial-data-bits", fc.Serial.DataBits, &cfg.Serial.DataBits)
	s.setInt("serial-stop-bits", fc.Serial.StopBits, &cfg.Serial.StopBits)
	s.setString("serial-parity", fc.Serial.Parity, &cfg.Serial.Parity)

	s.setInt("frames", fc.Frames, &cfg.Frames)
	s.setBool("no-clear", fc.NoClear, &cfg.NoClear)
	s.setBool("no-header", fc.NoHeader, &cfg.NoHeader)

	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
