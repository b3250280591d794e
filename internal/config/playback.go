package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// PlaybackConfig tunes the real-time pacer. Defaults match the values the
// pacer falls back to on its own.
type PlaybackConfig struct {
	Warmup       time.Duration `env:"PLAYBACK_WARMUP, default=50ms"`
	QueueTarget  time.Duration `env:"PLAYBACK_QUEUE_TARGET, default=800ms"`
	DrainTimeout time.Duration `env:"PLAYBACK_DRAIN_TIMEOUT, default=5s"`
}

func NewPlaybackConfigFromEnv() (*PlaybackConfig, error) {
	var cfg PlaybackConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
