package telemetry_test

import (
	"context"
	"testing"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	inner := &testutil.RecordingAPI{}
	scoped := telemetry.NewScopedAPI("visit", inner)

	scoped.ReportBroken("front-page", "/", "title not found")
	scoped.ReportInfo("contact-form.throttled", "/en/contact/feedback")
	scoped.ReportCount("users", 3)

	broken := inner.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "visit: front-page", broken[0].ID)
	require.Equal(t, []any{"/", "title not found"}, broken[0].Params)

	require.True(t, inner.HasReport("info", "visit: contact-form.throttled"))

	counts := inner.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}

func TestNestedScopedAPI(t *testing.T) {
	inner := &testutil.RecordingAPI{}
	scoped := telemetry.NewScopedAPI("loadtest", telemetry.NewScopedAPI("user-3", inner))

	scoped.ReportWarning("wait")
	require.True(t, inner.HasReport("warning", "user-3: loadtest: wait"))
}

func TestConfigEnabled(t *testing.T) {
	require.False(t, telemetry.Config{}.Enabled())

	cfg := telemetry.Config{}
	cfg.Otlp.Metrics.HttpEndpoint = "http://localhost:4318/v1/metrics"
	require.True(t, cfg.Enabled())
}

func TestMetersWithoutProvider(t *testing.T) {
	meters, err := telemetry.NewMeters()
	require.NoError(t, err)
	// the global provider is a no-op here, recording must not panic
	meters.RecordTask(context.Background(), "anon /", 0, false)
	meters.RecordRequest(context.Background(), "static asset", 0, true)
}
