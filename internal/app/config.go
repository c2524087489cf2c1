package app

import (
	"errors"
	"runtime"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl variant + package pin files
	StorePath  string // local package content store
	InstallDir string // install tree the build writes into

	// HostOS is the build host operating system. Defaults to the running
	// process's OS; tests override it to pin resolution behavior.
	HostOS string

	DryRun    bool
	SkipCheck bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.InstallDir == "" {
		return nil, errors.New("InstallDir is a required configuration field and cannot be empty")
	}
	if cfg.HostOS == "" {
		cfg.HostOS = runtime.GOOS
	}

	return &cfg, nil
}
