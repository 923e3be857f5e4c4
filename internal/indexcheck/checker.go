// Package indexcheck verifies that every URL listed in the sitemap has a
// pre-rendered HTML snapshot crawlers can index, that robots.txt does not
// block the site and, optionally, that the live site answers for each URL.
package indexcheck

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"

	"showroom/internal/sitemap"
	"showroom/pkg/logger"
	"showroom/pkg/metrics"
	"showroom/pkg/serrors"
)

// contentMarkers are the closing tags of which at least one must appear in a
// pre-rendered page for it to count as having real content.
var contentMarkers = []string{"</h1>", "</h2>", "</p>"} //nolint: gochecknoglobals

// minLanguageSample is the amount of body text needed for a reliable language guess.
const minLanguageSample = 200

// Options configure an indexation run.
type Options struct {
	// BaseURL is the site origin the sitemap <loc> values belong to.
	BaseURL string
	// SitemapPath is the sitemap to check.
	SitemapPath string
	// RobotsPath is the robots.txt to check.
	RobotsPath string
	// DistDir is the build output holding pre-rendered pages.
	DistDir string
	// Live enables HEAD requests against every sitemap URL.
	Live bool
	// LiveTimeout bounds every live request.
	LiveTimeout time.Duration
	// UserAgent is sent with live requests.
	UserAgent string
	// ExpectedLanguage is the ISO 639-3 code of the site language; empty disables the check.
	ExpectedLanguage string
}

// Checker runs the indexation checks.
type Checker struct {
	opts    Options
	client  *http.Client
	metrics *metrics.IndexCheck
	now     func() time.Time
}

// New creates a Checker. client is used for live checks only; m may be nil.
func New(opts Options, client *http.Client, m *metrics.IndexCheck) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	if m == nil {
		m = metrics.NewIndexCheck()
	}

	return &Checker{
		opts:    opts,
		client:  client,
		metrics: m,
		now:     time.Now,
	}
}

// Metrics returns the collectors recorded by Run.
func (c *Checker) Metrics() *metrics.IndexCheck { return c.metrics }

// Run executes all checks. A missing sitemap or robots.txt aborts the run
// with ErrNotFound; every other problem is recorded in the report.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	set, err := sitemap.ParseFile(c.opts.SitemapPath)
	if err != nil {
		return nil, err
	}
	robots, err := os.ReadFile(c.opts.RobotsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, serrors.Wrap(serrors.ErrNotFound, err, "robots.txt %s not found", c.opts.RobotsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read robots.txt: %w", err)
	}

	report := &Report{
		Robots: CheckRobotsTxt(robots),
		Routes: make([]RouteResult, 0, len(set.URLs)),
		Live:   c.opts.Live,
	}

	for _, u := range set.URLs {
		report.Routes = append(report.Routes, c.checkRoute(ctx, u.Loc))
	}

	// live requests are issued one after another
	if c.opts.Live {
		for i := range report.Routes {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("live check interrupted: %w", err)
			}
			report.Routes[i].Findings = append(report.Routes[i].Findings, c.checkLive(ctx, report.Routes[i].URL))
		}
	}

	c.record(report, len(set.URLs))

	return report, nil
}

func (c *Checker) checkRoute(ctx context.Context, loc string) RouteResult {
	res := RouteResult{URL: strings.TrimSpace(loc)}

	p, err := sitemap.PathOf(c.opts.BaseURL, loc)
	if err != nil {
		res.Path = res.URL
		res.Findings = append(res.Findings, Finding{Check: CheckPrerender, Status: StatusFail, Message: err.Error()})

		return res
	}
	res.Path = p

	file, ok := PrerenderFile(c.opts.DistDir, p)
	res.File = file
	if !ok {
		res.Findings = append(res.Findings, Finding{
			Check:   CheckPrerender,
			Status:  StatusFail,
			Message: "pre-rendered file is missing",
		})

		return res
	}

	content, err := os.ReadFile(file)
	if err != nil {
		res.Findings = append(res.Findings, Finding{Check: CheckPrerender, Status: StatusFail, Message: err.Error()})

		return res
	}

	logger.Debug(ctx, "checking pre-rendered page", zap.String("path", p), zap.String("file", file))
	res.Findings = append(res.Findings, CheckContent(content))
	if len(bytes.TrimSpace(content)) == 0 {
		return res
	}
	res.Findings = append(res.Findings, CheckTags(content, c.opts.ExpectedLanguage)...)

	return res
}

func (c *Checker) checkLive(ctx context.Context, u string) Finding {
	ctx, cancel := context.WithTimeout(ctx, c.opts.LiveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return Finding{Check: CheckLive, Status: StatusFail, Message: fmt.Sprintf("could not create request: %v", err)}
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	start := c.now()
	resp, err := c.client.Do(req)
	c.metrics.LiveLatency.Observe(c.now().Sub(start).Seconds())
	if err != nil {
		logger.Warn(ctx, "live check failed", zap.String("url", u), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return Finding{Check: CheckLive, Status: StatusFail, Message: fmt.Sprintf("request timed out after %s", c.opts.LiveTimeout)}
		}

		return Finding{Check: CheckLive, Status: StatusFail, Message: fmt.Sprintf("request failed: %v", err)}
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return Finding{Check: CheckLive, Status: StatusFail, Message: fmt.Sprintf("HEAD returned %d", resp.StatusCode)}
	}

	return Finding{Check: CheckLive, Status: StatusPass, Message: fmt.Sprintf("HEAD returned %d", resp.StatusCode)}
}

func (c *Checker) record(r *Report, routes int) {
	c.metrics.Routes.Set(float64(routes))
	for _, check := range []Check{
		CheckRobots, CheckPrerender, CheckMetaDescription, CheckJSONLD, CheckOpenGraph, CheckLanguage, CheckLive,
	} {
		c.metrics.Failures.WithLabelValues(string(check)).Set(float64(r.Failures(check)))
		c.metrics.Warnings.WithLabelValues(string(check)).Set(float64(r.Warnings(check)))
	}
	c.metrics.MarkRun(c.now())
}

// PrerenderFile maps a site path to its pre-rendered snapshot: "/" is
// dist/index.html, "/a/b" is dist/a/b/index.html or, failing that,
// dist/a/b.html. The bool reports whether the file exists.
func PrerenderFile(distDir, p string) (string, bool) {
	rel := strings.Trim(sitemap.CleanPath(p), "/")
	candidates := []string{filepath.Join(distDir, filepath.FromSlash(rel), "index.html")}
	if rel != "" {
		candidates = append(candidates, filepath.Join(distDir, filepath.FromSlash(rel)+".html"))
	}

	for _, f := range candidates {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			return f, true
		}
	}

	return candidates[0], false
}

// CheckContent fails an empty snapshot or one lacking every content marker.
func CheckContent(content []byte) Finding {
	if len(bytes.TrimSpace(content)) == 0 {
		return Finding{Check: CheckPrerender, Status: StatusFail, Message: "pre-rendered file is empty"}
	}

	lower := bytes.ToLower(content)
	for _, marker := range contentMarkers {
		if bytes.Contains(lower, []byte(marker)) {
			return Finding{Check: CheckPrerender, Status: StatusPass, Message: "content rendered"}
		}
	}

	return Finding{
		Check:   CheckPrerender,
		Status:  StatusFail,
		Message: "no </h1>, </h2> or </p> found; page looks like an empty app shell",
	}
}

// CheckTags inspects the SEO tags of a snapshot. Missing tags are warnings.
func CheckTags(content []byte, expectedLanguage string) []Finding {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return []Finding{{Check: CheckMetaDescription, Status: StatusWarn, Message: fmt.Sprintf("could not parse HTML: %v", err)}}
	}

	var out []Finding

	desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		out = append(out, Finding{Check: CheckMetaDescription, Status: StatusWarn, Message: "meta description is missing"})
	} else {
		out = append(out, Finding{Check: CheckMetaDescription, Status: StatusPass, Message: desc})
	}

	ld := doc.Find(`script[type="application/ld+json"]`)
	switch {
	case ld.Length() == 0:
		out = append(out, Finding{Check: CheckJSONLD, Status: StatusWarn, Message: "JSON-LD script is missing"})
	default:
		invalid := 0
		ld.Each(func(_ int, s *goquery.Selection) {
			if !json.Valid([]byte(strings.TrimSpace(s.Text()))) {
				invalid++
			}
		})
		if invalid > 0 {
			out = append(out, Finding{
				Check:   CheckJSONLD,
				Status:  StatusWarn,
				Message: fmt.Sprintf("%d of %d JSON-LD scripts are not valid JSON", invalid, ld.Length()),
			})
		} else {
			out = append(out, Finding{Check: CheckJSONLD, Status: StatusPass, Message: fmt.Sprintf("%d JSON-LD scripts", ld.Length())})
		}
	}

	if og := doc.Find(`meta[property^="og:"]`); og.Length() == 0 {
		out = append(out, Finding{Check: CheckOpenGraph, Status: StatusWarn, Message: "Open Graph tags are missing"})
	} else {
		out = append(out, Finding{Check: CheckOpenGraph, Status: StatusPass, Message: fmt.Sprintf("%d Open Graph tags", og.Length())})
	}

	if expectedLanguage != "" {
		if f, ok := checkLanguage(doc, expectedLanguage); ok {
			out = append(out, f)
		}
	}

	return out
}

// checkLanguage guesses the body language. It reports nothing when the page
// has too little text for a reliable guess.
func checkLanguage(doc *goquery.Document, expected string) (Finding, bool) {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(body.Text()), " ")
	if utf8.RuneCountInString(text) < minLanguageSample {
		return Finding{}, false
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return Finding{}, false
	}
	got := info.Lang.Iso6393()
	if got != expected {
		return Finding{
			Check:   CheckLanguage,
			Status:  StatusWarn,
			Message: fmt.Sprintf("body text looks like %q, expected %q", got, expected),
		}, true
	}

	return Finding{Check: CheckLanguage, Status: StatusPass, Message: got}, true
}

// CheckRobotsTxt fails a robots.txt that disallows the whole site for every
// crawler and warns when no Sitemap directive is present.
func CheckRobotsTxt(content []byte) []Finding {
	var (
		groupAgents  []string
		inRules      bool
		blocked      bool
		sitemapLines []string
	)

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			// a user-agent line after rules starts a new group
			if inRules {
				groupAgents = nil
				inRules = false
			}
			groupAgents = append(groupAgents, value)
		case "disallow":
			inRules = true
			if value == "/" && containsAgent(groupAgents, "*") {
				blocked = true
			}
		case "allow", "crawl-delay", "clean-param", "host":
			inRules = true
		case "sitemap":
			sitemapLines = append(sitemapLines, value)
		}
	}

	var out []Finding
	if blocked {
		out = append(out, Finding{Check: CheckRobots, Status: StatusFail, Message: "Disallow: / blocks all crawlers"})
	} else {
		out = append(out, Finding{Check: CheckRobots, Status: StatusPass, Message: "site is crawlable"})
	}
	if len(sitemapLines) == 0 {
		out = append(out, Finding{Check: CheckRobots, Status: StatusWarn, Message: "no Sitemap directive"})
	} else {
		out = append(out, Finding{Check: CheckRobots, Status: StatusPass, Message: "Sitemap: " + strings.Join(sitemapLines, ", ")})
	}

	return out
}

func containsAgent(agents []string, agent string) bool {
	for _, a := range agents {
		if a == agent {
			return true
		}
	}

	return false
}
