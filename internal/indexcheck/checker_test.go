package indexcheck_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"showroom/internal/indexcheck"
	"showroom/internal/sitemap"
	"showroom/pkg/domain"
	"showroom/pkg/serrors"
)

const baseURL = "https://example.com"

const page = `<!doctype html>
<html lang="ru">
<head>
  <meta name="description" content="Диван Осло">
  <meta property="og:title" content="Диван Осло">
  <script type="application/ld+json">{"@type":"Product","name":"Осло"}</script>
</head>
<body><h1>Диван Осло</h1><p>Мягкий диван для гостиной.</p></body>
</html>`

const shell = `<!doctype html><html><head></head><body><div id="root"></div><script src="/assets/index-3f9a.js"></script></body></html>`

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type fixture struct {
	dir  string
	opts indexcheck.Options
}

func newFixture(t *testing.T, paths ...string) fixture {
	t.Helper()
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	public := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.MkdirAll(public, 0o755))

	routes := make([]domain.Route, 0, len(paths))
	for _, p := range paths {
		routes = append(routes, domain.Route{Path: p, Kind: domain.RouteKindStatic, Priority: 0.8, ChangeFreq: domain.ChangeFreqWeekly})
	}
	set, err := sitemap.Build(baseURL, routes, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, sitemap.WriteFile(filepath.Join(public, "sitemap.xml"), set))
	writeFile(t, filepath.Join(public, "robots.txt"), "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n")

	return fixture{
		dir: dir,
		opts: indexcheck.Options{
			BaseURL:     baseURL,
			SitemapPath: filepath.Join(public, "sitemap.xml"),
			RobotsPath:  filepath.Join(public, "robots.txt"),
			DistDir:     dist,
			LiveTimeout: time.Second,
			UserAgent:   "showroomctl-test",
		},
	}
}

func (f fixture) prerender(t *testing.T, rel, content string) {
	t.Helper()
	writeFile(t, filepath.Join(f.opts.DistDir, filepath.FromSlash(rel)), content)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun_AllPrerendered(t *testing.T) {
	f := newFixture(t, "/", "/catalog", "/product/sofa-oslo")
	f.prerender(t, "index.html", page)
	f.prerender(t, "catalog/index.html", page)
	f.prerender(t, "product/sofa-oslo.html", page)

	c := indexcheck.New(f.opts, nil, nil)
	report, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Routes, 3)
	require.Zero(t, report.Failures(""))
	require.Zero(t, report.Warnings(""))
	require.False(t, report.Failed())
	require.Equal(t, filepath.Join(f.opts.DistDir, "product", "sofa-oslo.html"), report.Routes[2].File)

	require.InDelta(t, 3, testutil.ToFloat64(c.Metrics().Routes), 0)
	require.InDelta(t, 0, testutil.ToFloat64(c.Metrics().Failures.WithLabelValues("prerender")), 0)
}

func TestRun_MissingPrerender(t *testing.T) {
	f := newFixture(t, "/", "/about")
	f.prerender(t, "index.html", page)

	report, err := indexcheck.New(f.opts, nil, nil).Run(context.Background())
	require.NoError(t, err)

	require.True(t, report.Failed())
	require.Equal(t, 1, report.Failures(indexcheck.CheckPrerender))
	require.False(t, report.Routes[0].Failed())
	require.True(t, report.Routes[1].Failed())
	require.Equal(t, "/about", report.Routes[1].Path)
}

func TestRun_EmptyShell(t *testing.T) {
	f := newFixture(t, "/", "/contacts")
	f.prerender(t, "index.html", shell)
	f.prerender(t, "contacts/index.html", "  \n")

	report, err := indexcheck.New(f.opts, nil, nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, report.Failures(indexcheck.CheckPrerender))
	for _, r := range report.Routes {
		require.Equal(t, indexcheck.StatusFail, r.Status())
	}
}

func TestRun_MissingTagsAreWarnings(t *testing.T) {
	f := newFixture(t, "/")
	f.prerender(t, "index.html", "<html><body><h2>Каталог</h2></body></html>")

	report, err := indexcheck.New(f.opts, nil, nil).Run(context.Background())
	require.NoError(t, err)

	require.False(t, report.Failed())
	require.Equal(t, 1, report.Warnings(indexcheck.CheckMetaDescription))
	require.Equal(t, 1, report.Warnings(indexcheck.CheckJSONLD))
	require.Equal(t, 1, report.Warnings(indexcheck.CheckOpenGraph))
	require.Equal(t, indexcheck.StatusWarn, report.Routes[0].Status())
}

func TestRun_MissingInputs(t *testing.T) {
	t.Run("sitemap", func(t *testing.T) {
		f := newFixture(t, "/")
		require.NoError(t, os.Remove(f.opts.SitemapPath))

		_, err := indexcheck.New(f.opts, nil, nil).Run(context.Background())
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})

	t.Run("robots", func(t *testing.T) {
		f := newFixture(t, "/")
		require.NoError(t, os.Remove(f.opts.RobotsPath))

		_, err := indexcheck.New(f.opts, nil, nil).Run(context.Background())
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}

func TestRun_Live(t *testing.T) {
	f := newFixture(t, "/", "/catalog", "/about")
	f.prerender(t, "index.html", page)
	f.prerender(t, "catalog/index.html", page)
	f.prerender(t, "about/index.html", page)
	f.opts.Live = true

	var seen []string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodHead, r.Method)
		require.Equal(t, "showroomctl-test", r.Header.Get("User-Agent"))
		seen = append(seen, r.URL.Path)

		switch r.URL.Path {
		case "/catalog":
			return nil, errors.New("connection reset by peer")
		case "/about":
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
		default:
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
	})}

	c := indexcheck.New(f.opts, client, nil)
	report, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"/", "/catalog", "/about"}, seen, "a failed request must not stop the run")
	require.Equal(t, 2, report.Failures(indexcheck.CheckLive))
	require.Zero(t, report.Failures(indexcheck.CheckPrerender))
	require.True(t, report.Failed())
	require.InDelta(t, 2, testutil.ToFloat64(c.Metrics().Failures.WithLabelValues("live")), 0)
	require.Equal(t, 7, testutil.CollectAndCount(c.Metrics().Failures))
}

func TestRun_LiveTimeout(t *testing.T) {
	f := newFixture(t, "/", "/catalog", "/about")
	f.prerender(t, "index.html", page)
	f.prerender(t, "catalog/index.html", page)
	f.prerender(t, "about/index.html", page)
	f.opts.Live = true
	f.opts.LiveTimeout = 50 * time.Millisecond

	var seen []string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.Path)
		if r.URL.Path == "/catalog" {
			<-r.Context().Done()

			return nil, r.Context().Err()
		}

		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})}

	start := time.Now()
	report, err := indexcheck.New(f.opts, client, nil).Run(context.Background())
	require.NoError(t, err)
	require.Less(t, time.Since(start), 5*time.Second)

	require.Equal(t, []string{"/", "/catalog", "/about"}, seen, "a timed out request must not stop the run")
	require.Equal(t, 1, report.Failures(indexcheck.CheckLive))

	var live []indexcheck.Finding
	for _, f := range report.Routes[1].Findings {
		if f.Check == indexcheck.CheckLive {
			live = append(live, f)
		}
	}
	require.Len(t, live, 1)
	require.Equal(t, indexcheck.StatusFail, live[0].Status)
	require.Equal(t, "request timed out after 50ms", live[0].Message)
	require.False(t, report.Routes[2].Failed())
}

func TestPrerenderFile(t *testing.T) {
	dist := t.TempDir()
	writeFile(t, filepath.Join(dist, "index.html"), page)
	writeFile(t, filepath.Join(dist, "catalog", "index.html"), page)
	writeFile(t, filepath.Join(dist, "blog", "care.html"), page)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{path: "/", want: filepath.Join(dist, "index.html"), ok: true},
		{path: "/catalog/", want: filepath.Join(dist, "catalog", "index.html"), ok: true},
		{path: "/blog/care", want: filepath.Join(dist, "blog", "care.html"), ok: true},
		{path: "/about", want: filepath.Join(dist, "about", "index.html"), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := indexcheck.PrerenderFile(dist, tt.path)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRobotsTxt(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
		warnings int
	}{
		{
			name:    "open with sitemap",
			content: "User-agent: *\nDisallow: /admin\nSitemap: https://example.com/sitemap.xml\n",
		},
		{
			name:     "blocks everyone",
			content:  "User-agent: *\nDisallow: /\n",
			failures: 1,
			warnings: 1,
		},
		{
			name:    "blocks one bot only",
			content: "User-agent: BadBot\nDisallow: /\n\nUser-agent: *\nAllow: /\nSitemap: https://example.com/sitemap.xml\n",
		},
		{
			name:     "commented out rule",
			content:  "User-agent: *\n# Disallow: /\n",
			warnings: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &indexcheck.Report{Robots: indexcheck.CheckRobotsTxt([]byte(tt.content))}
			require.Equal(t, tt.failures, r.Failures(indexcheck.CheckRobots))
			require.Equal(t, tt.warnings, r.Warnings(indexcheck.CheckRobots))
		})
	}
}

func TestCheckTags_Language(t *testing.T) {
	english := strings.Repeat("This sofa is comfortable and the fabric is easy to clean every day. ", 5)
	content := []byte(`<html><head><meta name="description" content="x"><meta property="og:title" content="x">` +
		`<script type="application/ld+json">{}</script></head><body><p>` + english + `</p></body></html>`)

	findings := indexcheck.CheckTags(content, "rus")
	r := &indexcheck.Report{Routes: []indexcheck.RouteResult{{Findings: findings}}}
	require.Equal(t, 1, r.Warnings(indexcheck.CheckLanguage))

	findings = indexcheck.CheckTags(content, "")
	r = &indexcheck.Report{Routes: []indexcheck.RouteResult{{Findings: findings}}}
	require.Zero(t, r.Warnings(""))
}

func TestRender(t *testing.T) {
	report := &indexcheck.Report{
		Robots: []indexcheck.Finding{{Check: indexcheck.CheckRobots, Status: indexcheck.StatusPass, Message: "site is crawlable"}},
		Routes: []indexcheck.RouteResult{
			{Path: "/", File: "dist/index.html", Findings: []indexcheck.Finding{{Check: indexcheck.CheckPrerender, Status: indexcheck.StatusPass}}},
			{Path: "/about", File: "dist/about/index.html", Findings: []indexcheck.Finding{
				{Check: indexcheck.CheckPrerender, Status: indexcheck.StatusFail, Message: "pre-rendered file is missing"},
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, indexcheck.Render(&buf, report))

	out := buf.String()
	require.Contains(t, out, "/about")
	require.Contains(t, out, "prerender: pre-rendered file is missing")
	require.Contains(t, out, "routes:     2 (1 failed)")
	require.Contains(t, out, "live:       skipped")
	require.Contains(t, out, "result:     FAIL")
}
