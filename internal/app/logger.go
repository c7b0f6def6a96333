package app

import (
	"linksoc/internal/config"
	"linksoc/pkg/logger"
)

// NewLogger builds the process logger from configuration and installs it as
// the package default.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Development(),
		File:        cfg.Log.File,
		Rotation: logger.Rotation{
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}
