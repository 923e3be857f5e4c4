// Package sitemap builds, writes and parses sitemap protocol 0.9 documents
// for the showroom site.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"showroom/pkg/domain"
	"showroom/pkg/serrors"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// LastModLayout is the W3C date format used for <lastmod>.
const LastModLayout = "2006-01-02"

// URLSet is the <urlset> root element.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

// URL is a single <url> entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build creates the sitemap for routes under baseURL. Every route yields
// exactly one entry whose <loc> is baseURL + route path.
func Build(baseURL string, routes []domain.Route, lastmod time.Time) (URLSet, error) {
	set := URLSet{
		Xmlns: Namespace,
		URLs:  make([]URL, 0, len(routes)),
	}
	mod := lastmod.Format(LastModLayout)

	for _, r := range routes {
		loc, err := JoinURL(baseURL, r.Path)
		if err != nil {
			return URLSet{}, err
		}
		set.URLs = append(set.URLs, URL{
			Loc:        loc,
			LastMod:    mod,
			ChangeFreq: string(r.ChangeFreq),
			Priority:   FormatPriority(r.Priority),
		})
	}

	return set, nil
}

// FormatPriority renders p with at least one decimal ("1.0", "0.8") and
// without rounding finer overrides ("0.25").
func FormatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// Write encodes set as an indented XML document with the XML header.
func Write(w io.Writer, set URLSet) error {
	if set.Xmlns == "" {
		set.Xmlns = Namespace
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("could not write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("could not encode sitemap: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("could not write sitemap: %w", err)
	}

	return nil
}

// WriteFile writes set to path, creating parent directories.
func WriteFile(path string, set URLSet) error {
	var buf bytes.Buffer
	if err := Write(&buf, set); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create sitemap directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("could not write sitemap: %w", err)
	}

	return nil
}

// Parse decodes a sitemap document.
func Parse(r io.Reader) (URLSet, error) {
	var set URLSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return URLSet{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode sitemap")
	}

	return set, nil
}

// ParseFile decodes the sitemap at path. A missing file is ErrNotFound.
func ParseFile(path string) (URLSet, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return URLSet{}, serrors.Wrap(serrors.ErrNotFound, err, "sitemap %s not found", path)
	}
	if err != nil {
		return URLSet{}, fmt.Errorf("could not open sitemap: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}
