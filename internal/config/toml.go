// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Speech   SpeechConfig   `toml:"speech"`
	Logging  LoggingConfig  `toml:"logging"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	ShowOriginal *bool    `toml:"show-original"`
	Rate         *float64 `toml:"rate"`
	MalePitch    *float64 `toml:"male-pitch"`
	FemalePitch  *float64 `toml:"female-pitch"`
	Workers      *int     `toml:"workers"`
}

// SpeechConfig maps the external speech command settings.
type SpeechConfig struct {
	Command      *string  `toml:"command"`
	MaleVoice    *string  `toml:"male-voice"`
	FemaleVoice  *string  `toml:"female-voice"`
	DefaultVoice *string  `toml:"default-voice"`
	TimeoutSec   *float64 `toml:"timeout"`
}

// LoggingConfig maps log file settings.
type LoggingConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	Path   *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
