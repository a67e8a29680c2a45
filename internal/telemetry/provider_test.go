package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("GOPHADMIN_OTEL_ENDPOINT", "")
	t.Setenv("GOPHADMIN_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("GOPHADMIN_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("GOPHADMIN_OTEL_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.False(t, cfg.Active())

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// 192.0.2.0/24 is TEST-NET-1; nothing is exported before shutdown.
	t.Setenv("GOPHADMIN_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("GOPHADMIN_OTEL_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.Active())

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestLoadConfig_BadBool(t *testing.T) {
	t.Setenv("GOPHADMIN_OTEL_ENABLED", "maybe")

	_, err := LoadConfig()
	require.Error(t, err)
}
