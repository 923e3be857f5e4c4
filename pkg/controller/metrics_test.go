package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"showroom/pkg/controller"
	"showroom/pkg/metrics"
)

func TestWithMetrics_CountsByStatus(t *testing.T) {
	m, err := metrics.NewHTTP(prometheus.NewRegistry())
	require.NoError(t, err)

	h := controller.WithMetrics(m, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)

			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, p := range []string{"/", "/catalog", "/missing.png"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	require.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "404")), 0)
}
