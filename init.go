package main

import (
	"context"

	"github.com/parcelmesh/shipbridge/internal/config"
	"github.com/parcelmesh/shipbridge/internal/telemetry"
	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/parcelmesh/shipbridge/pkg/carrier/foxpost"
	"github.com/parcelmesh/shipbridge/pkg/carrier/gls"
	"github.com/parcelmesh/shipbridge/pkg/carrier/mpl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.ServiceName, cfg.LogLevel)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger) *carrier.Registry {
	registry := carrier.NewRegistry()

	tracer := otel.Tracer(cfg.ServiceName)

	if cfg.FoxpostEnabled {
		registry.Register(foxpost.New(foxpost.Config{
			APIKey:   cfg.FoxpostAPIKey,
			Username: cfg.FoxpostUsername,
			Password: cfg.FoxpostPassword,
			BaseURL:  cfg.FoxpostBaseURL,
			TestMode: cfg.FoxpostTestMode,
			UseMock:  cfg.FoxpostUseMock,
		}, logger, tracer))
	}

	if cfg.GLSEnabled {
		registry.Register(gls.New(gls.Config{
			Username: cfg.GLSUsername,
			Password: cfg.GLSPassword,
			BaseURL:  cfg.GLSBaseURL,
			TestMode: cfg.GLSTestMode,
			UseMock:  cfg.GLSUseMock,
		}, logger, tracer))
	}

	if cfg.MPLEnabled {
		registry.Register(mpl.New(mpl.Config{
			ClientID:     cfg.MPLClientID,
			ClientSecret: cfg.MPLClientSecret,
			BaseURL:      cfg.MPLBaseURL,
			TokenURL:     cfg.MPLTokenURL,
			TestMode:     cfg.MPLTestMode,
			UseMock:      cfg.MPLUseMock,
		}, logger, tracer))
	}

	return registry
}
