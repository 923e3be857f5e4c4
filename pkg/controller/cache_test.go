package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"showroom/pkg/controller"
)

func TestWithCacheControl(t *testing.T) {
	h := controller.WithCacheControl("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	cases := []struct {
		path string
		want string
	}{
		{path: "/assets/index-4f3a.js", want: "public, max-age=31536000, immutable"},
		{path: "/", want: "no-cache"},
		{path: "/catalog/sofa-oslo", want: "no-cache"},
		{path: "/index.html", want: "no-cache"},
		{path: "/images/hero.webp", want: "public, max-age=3600"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.Equal(t, tc.want, rec.Header().Get("Cache-Control"), tc.path)
	}
}
