package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOtlpConfigResolved(t *testing.T) {
	cfg := OtlpConfig{
		Default: OtlpConnConfig{
			HttpEndpoint: "http://collector:4318",
			Headers:      map[string]string{"authorization": "Bearer load", "x-team": "web"},
		},
		Traces: OtlpConnConfig{
			Headers: map[string]string{"x-team": "perf"},
		},
		Metrics: OtlpConnConfig{
			HttpEndpoint: "http://metrics:4318",
		},
	}

	resolved, err := cfg.resolved()
	require.NoError(t, err)
	require.Equal(t, OtlpConnConfig{
		HttpEndpoint: "http://collector:4318",
		Headers:      map[string]string{"authorization": "Bearer load", "x-team": "perf"},
	}, resolved.Traces)
	require.Equal(t, OtlpConnConfig{
		HttpEndpoint: "http://metrics:4318",
		Headers:      map[string]string{"authorization": "Bearer load", "x-team": "web"},
	}, resolved.Metrics)

	// the input is left untouched
	require.Equal(t, map[string]string{"x-team": "perf"}, cfg.Traces.Headers)
	require.Empty(t, cfg.Metrics.Headers)
}

func TestConfigEnabledByDefault(t *testing.T) {
	cfg := Config{}
	cfg.Otlp.Default.GrpcEndpoint = "http://collector:4317"
	require.True(t, cfg.Enabled())
}
