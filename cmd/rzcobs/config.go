package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const envLogLevel = "RZCOBS_LOG_LEVEL"

// config holds the CLI runtime settings.
type config struct {
	BufferSize   int
	MaxFrameSize int
	SplitLines   bool
	TrimZeros    bool
	Strict       bool
	Hex          bool
	LogLevel     zerolog.Level
}

// config.toml key mapping to runtime settings.
type fileConfig struct {
	BufferSize   int    `toml:"buffer_size"`
	MaxFrameSize int    `toml:"max_frame_size"`
	SplitLines   bool   `toml:"split_lines"`
	TrimZeros    bool   `toml:"trim_zeros"`
	Strict       bool   `toml:"strict"`
	Hex          bool   `toml:"hex"`
	LogLevel     string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		BufferSize:   32 * 1024,
		MaxFrameSize: 1 << 20,
		LogLevel:     zerolog.InfoLevel,
	}
}

// loadConfig overlays the keys present in the TOML file at path onto the
// defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return config{}, fmt.Errorf("load rzcobs config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return config{}, fmt.Errorf("load rzcobs config: unknown key %q", undecoded[0].String())
		}

		if meta.IsDefined("buffer_size") {
			cfg.BufferSize = raw.BufferSize
		}
		if meta.IsDefined("max_frame_size") {
			cfg.MaxFrameSize = raw.MaxFrameSize
		}
		if meta.IsDefined("split_lines") {
			cfg.SplitLines = raw.SplitLines
		}
		if meta.IsDefined("trim_zeros") {
			cfg.TrimZeros = raw.TrimZeros
		}
		if meta.IsDefined("strict") {
			cfg.Strict = raw.Strict
		}
		if meta.IsDefined("hex") {
			cfg.Hex = raw.Hex
		}
		if meta.IsDefined("log_level") {
			lvl, err := parseLevel(raw.LogLevel)
			if err != nil {
				return config{}, fmt.Errorf("load rzcobs config: %w", err)
			}
			cfg.LogLevel = lvl
		}
	}

	if raw := os.Getenv(envLogLevel); raw != "" {
		lvl, err := parseLevel(raw)
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", envLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	if cfg.BufferSize < 16 {
		return config{}, fmt.Errorf("load rzcobs config: buffer_size %d is below 16", cfg.BufferSize)
	}
	if cfg.MaxFrameSize < 0 {
		return config{}, fmt.Errorf("load rzcobs config: negative max_frame_size %d", cfg.MaxFrameSize)
	}
	return cfg, nil
}

func parseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "disabled", "off", "none":
		return zerolog.Disabled, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
	return lvl, nil
}
