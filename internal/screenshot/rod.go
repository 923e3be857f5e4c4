package screenshot

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"showroom/pkg/serrors"
)

type rodCapturer struct {
	opts     Options
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRod(ctx context.Context, o Options) (*rodCapturer, error) {
	l := launcher.New().Headless(o.Headless).NoSandbox(o.NoSandbox)
	if o.ExecPath != "" {
		l = l.Bin(o.ExecPath)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not launch browser")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not connect to browser")
	}

	return &rodCapturer{opts: o, launcher: l, browser: browser}, nil
}

func (c *rodCapturer) Capture(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tab, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not open tab")
	}
	defer func() { _ = tab.Close() }()

	page := tab.Context(ctx).Timeout(c.opts.NavigationTimeout)
	defer page.CancelTimeout()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             req.Width,
		Height:            req.Height,
		DeviceScaleFactor: req.scale(),
		Mobile:            req.Mobile,
	}); err != nil {
		return nil, classify(err, "could not set viewport")
	}
	if req.Mobile {
		if err := (proto.EmulationSetTouchEmulationEnabled{Enabled: true}).Call(page); err != nil {
			return nil, classify(err, "could not enable touch")
		}
	}
	if req.Dark {
		if err := (proto.EmulationSetEmulatedMedia{Features: []*proto.EmulationMediaFeature{
			{Name: "prefers-color-scheme", Value: "dark"},
		}}).Call(page); err != nil {
			return nil, classify(err, "could not emulate dark color scheme")
		}
	}

	if err := page.Navigate(req.URL); err != nil {
		return nil, classify(err, "could not load %s", req.URL)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, classify(err, "could not load %s", req.URL)
	}

	if req.Dark && c.opts.DarkModeKey != "" {
		if _, err := page.Eval(setItemJS, c.opts.DarkModeKey, c.opts.DarkModeValue); err != nil {
			return nil, classify(err, "could not enable dark mode")
		}
		if err := page.Reload(); err != nil {
			return nil, classify(err, "could not reload %s", req.URL)
		}
		if err := page.WaitLoad(); err != nil {
			return nil, classify(err, "could not load %s", req.URL)
		}
	}

	if req.Scroll {
		err := scrollToBottom(page.GetContext(), c.opts,
			func(px int) (bool, error) {
				res, err := page.Eval(scrollStepJS, px)
				if err != nil {
					return false, err
				}

				return res.Value.Bool(), nil
			},
			func() error {
				_, err := page.Eval(scrollTopJS)

				return err
			},
		)
		if err != nil {
			return nil, classify(err, "could not scroll %s", req.URL)
		}
	}

	if err := sleep(page.GetContext(), c.opts.SettleDelay); err != nil {
		return nil, classify(err, "could not capture %s", req.URL)
	}

	png, err := page.Screenshot(req.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, classify(err, "could not capture %s", req.URL)
	}

	return png, nil
}

func (c *rodCapturer) Close() error {
	err := c.browser.Close()
	c.launcher.Kill()
	c.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("could not close browser: %w", err)
	}

	return nil
}
