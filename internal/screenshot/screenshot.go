// Package screenshot captures PNG screenshots of site pages with a locally
// installed Chromium. Two automation drivers are available: chromedp and rod.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"showroom/internal/sitemap"
	"showroom/pkg/domain"
	"showroom/pkg/logger"
	"showroom/pkg/serrors"
)

const (
	// DriverChromedp drives the browser through chromedp.
	DriverChromedp = "chromedp"
	// DriverRod drives the browser through go-rod.
	DriverRod = "rod"
)

// Request describes one capture.
type Request struct {
	URL    string
	Output string
	Width  int
	Height int
	// Scale is the device scale factor; zero means 1.
	Scale    float64
	Mobile   bool
	FullPage bool
	Dark     bool
	Scroll   bool
}

// Validate checks that the request can be captured.
func (r Request) Validate() error {
	if r.URL == "" {
		return serrors.With(serrors.ErrBadRequest, "URL is required")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return serrors.With(serrors.ErrBadRequest, "viewport must be positive, got %dx%d", r.Width, r.Height)
	}

	return nil
}

func (r Request) scale() float64 {
	if r.Scale <= 0 {
		return 1
	}

	return r.Scale
}

// Options configure the browser behind a Capturer.
type Options struct {
	Driver            string
	ExecPath          string
	Headless          bool
	NoSandbox         bool
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ScrollStep        int
	ScrollDelay       time.Duration
	MaxScrolls        int
	DarkModeKey       string
	DarkModeValue     string
}

// New launches a browser with the configured driver.
func New(ctx context.Context, opts Options) (Capturer, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverChromedp:
		return newChromedp(ctx, opts)
	case DriverRod:
		return newRod(ctx, opts)
	default:
		return nil, serrors.With(serrors.ErrInvalidConfig, "unknown browser driver %q", opts.Driver)
	}
}

// Take captures req and writes the PNG to req.Output.
func Take(ctx context.Context, c Capturer, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Output == "" {
		return serrors.With(serrors.ErrBadRequest, "output path is required")
	}

	png, err := c.Capture(ctx, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(req.Output, png, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("could not write screenshot: %w", err)
	}

	logger.Info(ctx, "screenshot written",
		zap.String("url", req.URL), zap.String("output", req.Output), zap.Int("bytes", len(png)))

	return nil
}

// Viewport is a browser window size.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

// Variant is one look of a page: desktop or mobile, light or dark.
type Variant struct {
	Name   string
	Mobile bool
	Dark   bool
}

// DefaultVariants returns light and dark captures for desktop and mobile.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "desktop"},
		{Name: "desktop-dark", Dark: true},
		{Name: "mobile", Mobile: true},
		{Name: "mobile-dark", Mobile: true, Dark: true},
	}
}

// PagesOptions configure a batch capture.
type PagesOptions struct {
	BaseURL   string
	OutputDir string
	Pages     []string
	Variants  []Variant
	Desktop   Viewport
	Mobile    Viewport
	FullPage  bool
	Scroll    bool
}

// Shot is the outcome of one batch capture.
type Shot struct {
	Page    string
	Variant string
	Output  string
	Err     error
}

// Pages captures every page in every variant into
// <OutputDir>/<slug>-<variant>.png. A failed shot is recorded and the batch
// goes on; the returned error is ErrCheckFailed when any shot failed.
func Pages(ctx context.Context, c Capturer, o PagesOptions) ([]Shot, error) {
	variants := o.Variants
	if len(variants) == 0 {
		variants = DefaultVariants()
	}

	shots := make([]Shot, 0, len(o.Pages)*len(variants))
	failed := 0
	for _, p := range o.Pages {
		u, err := sitemap.JoinURL(o.BaseURL, p)
		if err != nil {
			return shots, err
		}
		slug := domain.Route{Path: sitemap.CleanPath(p)}.Slug()

		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return shots, fmt.Errorf("capture interrupted: %w", err)
			}

			vp := o.Desktop
			if v.Mobile {
				vp = o.Mobile
			}
			req := Request{
				URL:      u,
				Output:   filepath.Join(o.OutputDir, slug+"-"+v.Name+".png"),
				Width:    vp.Width,
				Height:   vp.Height,
				Scale:    vp.Scale,
				Mobile:   v.Mobile,
				FullPage: o.FullPage,
				Dark:     v.Dark,
				Scroll:   o.Scroll,
			}

			shot := Shot{Page: p, Variant: v.Name, Output: req.Output}
			if shot.Err = Take(ctx, c, req); shot.Err != nil {
				failed++
				logger.Warn(ctx, "screenshot failed",
					zap.String("page", p), zap.String("variant", v.Name), zap.Error(shot.Err))
			}
			shots = append(shots, shot)
		}
	}

	if failed > 0 {
		return shots, serrors.With(serrors.ErrCheckFailed, "%d of %d screenshots failed", failed, len(shots))
	}

	return shots, nil
}

// classify maps driver errors onto semantic kinds.
func classify(err error, format string, args ...any) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return serrors.Wrap(serrors.ErrTimeout, err, format, args...)
	}

	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
