package sitemap

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"showroom/pkg/serrors"
)

// NormalizeURL returns a canonical representation of a URL string:
//   - lower-case scheme and host
//   - empty path becomes "/"
//   - cleaned path (dot-segments resolved, duplicate slashes collapsed)
//   - no trailing slash except for the root path
//   - default ports (http:80, https:443) dropped
//   - query parameters sorted by key and value
//   - fragment removed
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Path = CleanPath(u.Path)
	u.RawPath = ""

	host := strings.ToLower(u.Host)
	port := ""
	if ph, pp, err := net.SplitHostPort(host); err == nil {
		host, port = ph, pp
	}
	if port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		u.RawQuery = q.Encode()
	}

	u.Fragment = ""

	return u.String(), nil
}

// CleanPath turns a route path into its canonical form: leading slash,
// resolved dot-segments and no trailing slash except for "/".
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	if cleaned != "/" {
		cleaned = strings.TrimRight(cleaned, "/")
	}

	return cleaned
}

// JoinURL returns baseURL + path with both parts normalized, so that the
// result is exactly "<origin><path>".
func JoinURL(baseURL, p string) (string, error) {
	base, err := NormalizeURL(baseURL)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrInvalidConfig, err, "invalid base URL %q", baseURL)
	}
	u, _ := url.Parse(base)
	if u.Scheme == "" || u.Host == "" {
		return "", serrors.With(serrors.ErrInvalidConfig, "base URL %q must be absolute", baseURL)
	}

	return strings.TrimRight(base, "/") + CleanPath(p), nil
}

// PathOf returns the site path of loc relative to baseURL. loc must be on
// the same host and, when baseURL has a path, below it on a segment boundary.
func PathOf(baseURL, loc string) (string, error) {
	b, err := url.Parse(baseURL)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrInvalidConfig, err, "invalid base URL %q", baseURL)
	}
	u, err := url.Parse(strings.TrimSpace(loc))
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid <loc> %q", loc)
	}
	if !strings.EqualFold(u.Hostname(), b.Hostname()) {
		return "", serrors.With(serrors.ErrBadRequest, "<loc> %q is outside %s", loc, b.Host)
	}
	basePath := strings.TrimRight(b.Path, "/")
	if basePath == "" {
		return CleanPath(u.Path), nil
	}
	p := strings.TrimRight(u.Path, "/")
	if p != basePath && !strings.HasPrefix(p, basePath+"/") {
		return "", serrors.With(serrors.ErrBadRequest, "<loc> %q is outside %s", loc, baseURL)
	}

	return CleanPath(strings.TrimPrefix(p, basePath)), nil
}
