package sitemap

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"showroom/pkg/domain"
	"showroom/pkg/serrors"
)

// defaultRoutes is the built-in showroom route list.
//
//go:embed routes.yml
var defaultRoutes []byte

const (
	homePriority    = 1.0
	staticPriority  = 0.8
	productPriority = 0.9
	blogPriority    = 0.7
)

// StaticRoute is a hand-listed page. In YAML it is either a bare path or a
// mapping with optional priority/changefreq overrides.
type StaticRoute struct {
	Path       string            `yaml:"path"`
	Priority   *float64          `yaml:"priority"`
	ChangeFreq domain.ChangeFreq `yaml:"changefreq"`
}

// UnmarshalYAML accepts both "- /about" and "- {path: /about, priority: 0.5}".
func (r *StaticRoute) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Path = node.Value

		return nil
	}

	type plain StaticRoute
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = StaticRoute(p)

	return nil
}

// Routes is the route source of the sitemap: hand-listed pages plus product
// and blog slugs.
type Routes struct {
	Static   []StaticRoute `yaml:"static"`
	Products []string      `yaml:"products"`
	Blog     []string      `yaml:"blog"`
}

// Len returns the number of sitemap entries the routes expand to.
func (r Routes) Len() int {
	return len(r.Static) + len(r.Products) + len(r.Blog)
}

// Expand turns the route source into concrete routes with their fixed
// sitemap hints, in file order: static pages, products, then blog articles.
func (r Routes) Expand(productPrefix, blogPrefix string) []domain.Route {
	out := make([]domain.Route, 0, r.Len())

	for _, s := range r.Static {
		p := CleanPath(s.Path)
		route := domain.Route{
			Path:       p,
			Kind:       domain.RouteKindStatic,
			Priority:   staticPriority,
			ChangeFreq: domain.ChangeFreqWeekly,
		}
		if p == "/" {
			route.Priority = homePriority
			route.ChangeFreq = domain.ChangeFreqDaily
		}
		if s.Priority != nil {
			route.Priority = *s.Priority
		}
		if s.ChangeFreq != "" {
			route.ChangeFreq = s.ChangeFreq
		}
		out = append(out, route)
	}
	for _, slug := range r.Products {
		out = append(out, domain.Route{
			Path:       CleanPath(productPrefix + slug),
			Kind:       domain.RouteKindProduct,
			Priority:   productPriority,
			ChangeFreq: domain.ChangeFreqWeekly,
		})
	}
	for _, slug := range r.Blog {
		out = append(out, domain.Route{
			Path:       CleanPath(blogPrefix + slug),
			Kind:       domain.RouteKindBlog,
			Priority:   blogPriority,
			ChangeFreq: domain.ChangeFreqMonthly,
		})
	}

	return out
}

// Validate checks overrides against the sitemap protocol.
func (r Routes) Validate() error {
	for _, s := range r.Static {
		if s.Path == "" {
			return serrors.With(serrors.ErrBadRequest, "static route without path")
		}
		if s.Priority != nil && (*s.Priority < 0 || *s.Priority > 1) {
			return serrors.With(serrors.ErrBadRequest, "route %s: priority %.2f out of [0, 1]", s.Path, *s.Priority)
		}
		if s.ChangeFreq != "" && !s.ChangeFreq.Valid() {
			return serrors.With(serrors.ErrBadRequest, "route %s: invalid changefreq %q", s.Path, s.ChangeFreq)
		}
	}
	for _, slug := range append(append([]string{}, r.Products...), r.Blog...) {
		if slug == "" {
			return serrors.With(serrors.ErrBadRequest, "empty slug")
		}
	}

	return nil
}

// ParseRoutes decodes and validates a YAML route list.
func ParseRoutes(b []byte) (Routes, error) {
	var r Routes
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Routes{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode routes")
	}
	if err := r.Validate(); err != nil {
		return Routes{}, err
	}

	return r, nil
}

// LoadRoutes reads the route list at path. An empty path returns the built-in
// showroom routes.
func LoadRoutes(path string) (Routes, error) {
	if path == "" {
		return ParseRoutes(defaultRoutes)
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Routes{}, serrors.Wrap(serrors.ErrNotFound, err, "routes file %s not found", path)
	}
	if err != nil {
		return Routes{}, fmt.Errorf("could not read routes file: %w", err)
	}

	return ParseRoutes(b)
}
