package main

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/config"
	"showroom/internal/screenshot"
	"showroom/internal/sitemap"
	"showroom/pkg/domain"
	"showroom/pkg/logger"
)

func browserOptions(cfg *config.Config, driver string) screenshot.Options {
	return screenshot.Options{
		Driver:            orDefault(driver, cfg.Browser.Driver),
		ExecPath:          cfg.Browser.ExecPath,
		Headless:          cfg.Browser.Headless,
		NoSandbox:         cfg.Browser.NoSandbox,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SettleDelay:       cfg.Browser.SettleDelay,
		ScrollStep:        cfg.Browser.ScrollStep,
		ScrollDelay:       cfg.Browser.ScrollDelay,
		MaxScrolls:        cfg.Browser.MaxScrolls,
		DarkModeKey:       cfg.Browser.DarkModeKey,
		DarkModeValue:     cfg.Browser.DarkModeValue,
	}
}

// resolveTarget accepts an absolute URL or a site path resolved against base.
func resolveTarget(base, target string) (string, string, error) {
	if u, err := url.Parse(target); err == nil && u.Scheme != "" && u.Host != "" {
		return target, sitemap.CleanPath(u.Path), nil
	}

	u, err := sitemap.JoinURL(base, target)
	if err != nil {
		return "", "", err
	}

	return u, sitemap.CleanPath(target), nil
}

func screenshotCommand(cfg *config.Config) *cobra.Command {
	var (
		req    screenshot.Request
		driver string
	)

	cmd := &cobra.Command{
		Use:   "screenshot <url-or-path> [output.png]",
		Short: "Captures a single page as PNG",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			target, p, err := resolveTarget(cfg.Screenshot.BaseURL, args[0])
			if err != nil {
				return err
			}
			req.URL = target

			if req.Width == 0 {
				req.Width = cfg.Screenshot.Width
				if req.Mobile {
					req.Width = cfg.Screenshot.MobileWidth
				}
			}
			if req.Height == 0 {
				req.Height = cfg.Screenshot.Height
				if req.Mobile {
					req.Height = cfg.Screenshot.MobileHeight
				}
			}
			if req.Mobile {
				req.Scale = cfg.Screenshot.MobileScale
			}

			req.Output = filepath.Join(cfg.Screenshot.OutputDir, outputName(p, req.Mobile, req.Dark))
			if len(args) == 2 {
				req.Output = args[1]
			}

			s := startSpinner("capturing " + req.URL)
			defer stopSpinner(s)

			c, err := screenshot.New(ctx, browserOptions(cfg, driver))
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.Warn(ctx, "could not close browser", zap.Error(err))
				}
			}()

			if err := screenshot.Take(ctx, c, req); err != nil {
				return err
			}
			stopSpinner(s)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "screenshot saved to %s\n", req.Output)

			return nil
		},
	}

	cmd.Flags().BoolVar(&req.FullPage, "full", false, "Capture the full page instead of the viewport")
	cmd.Flags().BoolVar(&req.Mobile, "mobile", false, "Emulate a mobile device")
	cmd.Flags().IntVar(&req.Width, "width", 0, "Viewport width (default screenshot.width or screenshot.mobileWidth)")
	cmd.Flags().IntVar(&req.Height, "height", 0, "Viewport height (default screenshot.height or screenshot.mobileHeight)")
	cmd.Flags().BoolVar(&req.Dark, "dark", false, "Switch the site to dark mode before capturing")
	cmd.Flags().BoolVar(&req.Scroll, "scroll", false, "Scroll to the bottom first to load lazy content")
	cmd.Flags().StringVar(&driver, "driver", "", "Browser driver: chromedp or rod (default browser.driver)")

	return cmd
}

// outputName is the default file name of a single capture.
func outputName(p string, mobile, dark bool) string {
	name := domain.Route{Path: p}.Slug()
	if mobile {
		name += "-mobile"
	}
	if dark {
		name += "-dark"
	}

	return name + ".png"
}

func screenshotPagesCommand(cfg *config.Config) *cobra.Command {
	var (
		driver   string
		fullPage bool
		scroll   bool
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "screenshot-pages [path...]",
		Short: "Captures the configured pages in light and dark mode on desktop and mobile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pages := cfg.Screenshot.Pages
			if len(args) > 0 {
				pages = args
			}

			s := startSpinner(fmt.Sprintf("capturing %d pages", len(pages)))
			defer stopSpinner(s)

			c, err := screenshot.New(ctx, browserOptions(cfg, driver))
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.Warn(ctx, "could not close browser", zap.Error(err))
				}
			}()

			shots, err := screenshot.Pages(ctx, c, screenshot.PagesOptions{
				BaseURL:   cfg.Screenshot.BaseURL,
				OutputDir: orDefault(outDir, cfg.Screenshot.OutputDir),
				Pages:     pages,
				Desktop:   screenshot.Viewport{Width: cfg.Screenshot.Width, Height: cfg.Screenshot.Height},
				Mobile: screenshot.Viewport{
					Width:  cfg.Screenshot.MobileWidth,
					Height: cfg.Screenshot.MobileHeight,
					Scale:  cfg.Screenshot.MobileScale,
				},
				FullPage: fullPage,
				Scroll:   scroll,
			})
			stopSpinner(s)

			out := cmd.OutOrStdout()
			for _, shot := range shots {
				if shot.Err != nil {
					_, _ = fmt.Fprintf(out, "FAIL %s (%s): %v\n", shot.Page, shot.Variant, shot.Err)

					continue
				}
				_, _ = fmt.Fprintf(out, "ok   %s (%s) -> %s\n", shot.Page, shot.Variant, shot.Output)
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&fullPage, "full", true, "Capture full pages")
	cmd.Flags().BoolVar(&scroll, "scroll", true, "Scroll every page first to load lazy content")
	cmd.Flags().StringVar(&driver, "driver", "", "Browser driver: chromedp or rod (default browser.driver)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default screenshot.outputDir)")

	return cmd
}
