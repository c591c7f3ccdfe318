package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/folio/internal/config"
	"github.com/mmcdole/folio/internal/telemetry"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupCreatesProviderWithURL(t *testing.T) {
	// Non-routable address so no export happens.
	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "folio-test",
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupAcceptsHostPort(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{Endpoint: "192.0.2.1:4318"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestNoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{Endpoint: "  "})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}
