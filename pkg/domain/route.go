package domain

import "strings"

// ChangeFreq is the sitemap <changefreq> hint for a route.
type ChangeFreq string

const (
	// ChangeFreqDaily marks content that changes every day, such as the home page.
	ChangeFreqDaily ChangeFreq = "daily"
	// ChangeFreqWeekly marks catalog and product pages.
	ChangeFreqWeekly ChangeFreq = "weekly"
	// ChangeFreqMonthly marks articles and mostly static pages.
	ChangeFreqMonthly ChangeFreq = "monthly"
	// ChangeFreqYearly marks legal and other rarely updated pages.
	ChangeFreqYearly ChangeFreq = "yearly"
)

// Valid reports whether f is one of the values the sitemap protocol allows.
func (f ChangeFreq) Valid() bool {
	switch f {
	case ChangeFreqDaily, ChangeFreqWeekly, ChangeFreqMonthly, ChangeFreqYearly,
		"always", "hourly", "never":
		return true
	default:
		return false
	}
}

// RouteKind tells where a route comes from.
type RouteKind string

const (
	// RouteKindStatic is a hand-listed page of the site.
	RouteKindStatic RouteKind = "static"
	// RouteKindProduct is a product detail page built from a product slug.
	RouteKindProduct RouteKind = "product"
	// RouteKindBlog is a blog article built from an article slug.
	RouteKindBlog RouteKind = "blog"
)

// Route is a single site path with its sitemap hints.
type Route struct {
	// Path is the site-relative path, always starting with "/".
	Path string `json:"path" yaml:"path"`
	// Kind is the route origin.
	Kind RouteKind `json:"kind" yaml:"-"`
	// Priority is the sitemap <priority> in [0, 1].
	Priority float64 `json:"priority" yaml:"priority"`
	// ChangeFreq is the sitemap <changefreq>.
	ChangeFreq ChangeFreq `json:"changefreq" yaml:"changefreq"`
}

// Slug returns a file-name friendly name for the route: "home" for the root,
// otherwise the path segments joined by dashes.
func (r Route) Slug() string {
	p := strings.Trim(r.Path, "/")
	if p == "" {
		return "home"
	}

	return strings.ReplaceAll(p, "/", "-")
}
