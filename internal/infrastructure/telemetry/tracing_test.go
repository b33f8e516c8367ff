package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProviderNone(t *testing.T) {
	tp, shutdown, err := NewTracerProvider("none", nil)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProviderStdout(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := NewTracerProvider("stdout", &buf)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "check Docker")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "check Docker")
	assert.Contains(t, buf.String(), "sky-health")
}

func TestNewTracerProviderUnknown(t *testing.T) {
	_, _, err := NewTracerProvider("zipkin", nil)
	assert.Error(t, err)
}
