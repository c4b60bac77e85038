package service

import (
	"time"

	"snapdiff/internal/platform/config"
)

// Options holds configuration options for the pipeline service
type Options struct {
	Retries    int
	RetryDelay time.Duration
	BatchSize  int
}

// FromConfig reads the pipeline options from config with SNAPDIFF_ prefix
func FromConfig(cfg config.Conf) Options {
	sd := cfg.Prefix("SNAPDIFF_")
	return Options{
		Retries:    sd.MayInt("RETRIES", 10),
		RetryDelay: sd.MayDuration("RETRY_DELAY", 0),
		BatchSize:  sd.MayInt("BATCH", 1000),
	}
}
