package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/gemwalletcom/swapper/internal/api"
	"github.com/gemwalletcom/swapper/internal/logging"
	"github.com/gemwalletcom/swapper/internal/metrics"
	"github.com/gemwalletcom/swapper/internal/providers"
)

type config struct {
	LogFormat logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string            `envconfig:"LOG_LEVEL" default:"info"`
	Server    api.Config
	Metrics   metrics.Config
	Providers providers.Config
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
