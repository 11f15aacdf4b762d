package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/warehouse-orders/pkg/telemetry"
)

func TestSetup_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{ServiceName: "warehouse-orders"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestSetup_ConEndpointRegistraProveedor(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{
		Endpoint:    "127.0.0.1:4318",
		Insecure:    true,
		ServiceName: "warehouse-orders-test",
	})
	require.NoError(t, err)
	assert.NotSame(t, prev, otel.GetTracerProvider())

	// Sin spans pendientes el cierre no necesita contactar al colector.
	assert.NoError(t, shutdown(context.Background()))
}
