package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"showroom/pkg/metrics"
)

func TestIndexCheck_WriteTextfile(t *testing.T) {
	m := metrics.NewIndexCheck()
	m.Routes.Set(12)
	m.Failures.WithLabelValues("prerender").Set(2)
	m.Warnings.WithLabelValues("json_ld").Set(1)
	m.LiveLatency.Observe(0.2)
	m.MarkRun(time.Unix(1700000000, 0))

	require.InDelta(t, 12, testutil.ToFloat64(m.Routes), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.Failures.WithLabelValues("prerender")), 0)

	path := filepath.Join(t.TempDir(), "indexcheck.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "showroom_indexcheck_routes 12")
	require.Contains(t, string(b), `showroom_indexcheck_failures{check="prerender"} 2`)
	require.Contains(t, string(b), "showroom_indexcheck_last_run_timestamp_seconds 1.7e+09")
}

func TestNewHTTP_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := metrics.NewHTTP(reg)
	require.NoError(t, err)
	m.Requests.WithLabelValues("GET", "200").Inc()
	require.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")), 0)

	_, err = metrics.NewHTTP(reg)
	require.Error(t, err, "registering the same collectors twice should fail")
}
