package sitemap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"showroom/internal/sitemap"
	"showroom/pkg/serrors"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "lowercase scheme and host; add root path",
			in:   "HTTPS://Mebel-Showroom.RU",
			out:  "https://mebel-showroom.ru/",
			ok:   true,
		},
		{
			name: "remove default https port",
			in:   "https://example.com:443/catalog",
			out:  "https://example.com/catalog",
			ok:   true,
		},
		{
			name: "keep non-default port",
			in:   "http://localhost:4173/",
			out:  "http://localhost:4173/",
			ok:   true,
		},
		{
			name: "clean path and drop trailing slash",
			in:   "http://example.com//blog/./a/../b/",
			out:  "http://example.com/blog/b",
			ok:   true,
		},
		{
			name: "sort query and drop fragment",
			in:   "https://example.com/catalog?b=2&a=2&a=1#top",
			out:  "https://example.com/catalog?a=1&a=2&b=2",
			ok:   true,
		},
		{
			name: "invalid url returns error",
			in:   "http://exa mple.com",
			ok:   false,
		},
	}

	for _, tc := range cases {
		got, err := sitemap.NormalizeURL(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.name)
			require.Equal(t, tc.out, got, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestJoinURL(t *testing.T) {
	got, err := sitemap.JoinURL("https://example.com", "/catalog")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/catalog", got)

	got, err = sitemap.JoinURL("https://example.com/", "/")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", got)

	got, err = sitemap.JoinURL("https://example.com", "product/sofa-oslo/")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/product/sofa-oslo", got)

	_, err = sitemap.JoinURL("example.com", "/")
	require.ErrorIs(t, err, serrors.ErrInvalidConfig)
}

func TestPathOf(t *testing.T) {
	p, err := sitemap.PathOf("https://example.com", "https://example.com/blog/sofa-care")
	require.NoError(t, err)
	require.Equal(t, "/blog/sofa-care", p)

	p, err = sitemap.PathOf("https://example.com", " https://EXAMPLE.com/ ")
	require.NoError(t, err)
	require.Equal(t, "/", p)

	_, err = sitemap.PathOf("https://example.com", "https://other.example/catalog")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestPathOf_BasePath(t *testing.T) {
	cases := []struct {
		loc  string
		want string
		ok   bool
	}{
		{loc: "https://example.com/shop", want: "/", ok: true},
		{loc: "https://example.com/shop/", want: "/", ok: true},
		{loc: "https://example.com/shop/sofa", want: "/sofa", ok: true},
		{loc: "https://example.com/shopping/sofa", ok: false},
		{loc: "https://example.com/sofa", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.loc, func(t *testing.T) {
			p, err := sitemap.PathOf("https://example.com/shop/", tc.loc)
			if !tc.ok {
				require.ErrorIs(t, err, serrors.ErrBadRequest)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, p)
		})
	}
}
