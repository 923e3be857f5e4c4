package s3_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"showroom/pkg/objectstore"
	"showroom/pkg/objectstore/s3"
	"showroom/pkg/serrors"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testOptions(fn rtFunc) s3.Options {
	o := s3.Options{
		Endpoint:        "storage.yandexcloud.net",
		Region:          "ru-central1",
		Bucket:          "showroom-assets",
		UseSSL:          true,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	}
	if fn != nil {
		o.Transport = fn
	}

	return o
}

func response(r *http.Request, code int, h http.Header, body string) *http.Response {
	if h == nil {
		h = http.Header{}
	}

	return &http.Response{
		StatusCode: code,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*s3.Options)
	}{
		{name: "no bucket", modify: func(o *s3.Options) { o.Bucket = "" }},
		{name: "no access key", modify: func(o *s3.Options) { o.AccessKeyID = "" }},
		{name: "no secret key", modify: func(o *s3.Options) { o.SecretAccessKey = "" }},
		{name: "no endpoint", modify: func(o *s3.Options) { o.Endpoint = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := testOptions(nil)
			tc.modify(&o)

			_, err := s3.New(o)
			require.ErrorIs(t, err, serrors.ErrInvalidConfig)
		})
	}
}

func TestClient_Put_success(t *testing.T) {
	c, err := s3.New(testOptions(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "storage.yandexcloud.net", r.URL.Host)
		require.Equal(t, "/showroom-assets/images/sofa-oslo.webp", r.URL.Path)
		require.Equal(t, "image/webp", r.Header.Get("Content-Type"))
		require.Equal(t, "public, max-age=31536000", r.Header.Get("Cache-Control"))
		require.Contains(t, r.Header.Get("Authorization"), "Credential=test-key/")

		h := http.Header{}
		h.Set("ETag", `"9b2cf535f27731c974343645a3985328"`)

		return response(r, http.StatusOK, h, ""), nil
	}))
	require.NoError(t, err)

	obj, err := c.Put(context.Background(), "images/sofa-oslo.webp", strings.NewReader("RIFF....WEBP"), 12, objectstore.PutOptions{
		ContentType:  "image/webp",
		CacheControl: "public, max-age=31536000",
	})
	require.NoError(t, err)
	require.Equal(t, "images/sofa-oslo.webp", obj.Key)
	require.Equal(t, "9b2cf535f27731c974343645a3985328", obj.ETag)
	require.Equal(t, int64(12), obj.Size)
}

func TestClient_Put_accessDenied(t *testing.T) {
	c, err := s3.New(testOptions(func(r *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("Content-Type", "application/xml")

		return response(r, http.StatusForbidden, h,
			`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`), nil
	}))
	require.NoError(t, err)

	_, err = c.Put(context.Background(), "images/a.png", strings.NewReader("x"), 1, objectstore.PutOptions{})
	require.ErrorIs(t, err, serrors.ErrInvalidConfig)
}

func TestClient_Put_noSuchBucket(t *testing.T) {
	c, err := s3.New(testOptions(func(r *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("Content-Type", "application/xml")

		return response(r, http.StatusNotFound, h,
			`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`), nil
	}))
	require.NoError(t, err)

	_, err = c.Put(context.Background(), "images/a.png", strings.NewReader("x"), 1, objectstore.PutOptions{})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestClient_URL(t *testing.T) {
	c, err := s3.New(testOptions(nil))
	require.NoError(t, err)

	require.Equal(t, "https://storage.yandexcloud.net/showroom-assets/images/hero%20banner.jpg", c.URL("images/hero banner.jpg"))
}
