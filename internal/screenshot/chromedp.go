package screenshot

import (
	"context"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"showroom/pkg/serrors"
)

type chromedpCapturer struct {
	opts          Options
	allocCancel   context.CancelFunc
	browserCtx    context.Context //nolint: containedctx
	browserCancel context.CancelFunc
}

func newChromedp(ctx context.Context, o Options) (*chromedpCapturer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
	)
	if !o.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if o.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}

	// the browser outlives the launch context; Close tears it down
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not start browser")
	}

	return &chromedpCapturer{
		opts:          o,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func (c *chromedpCapturer) Capture(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, c.opts.NavigationTimeout)
	defer timeoutCancel()

	viewport := []chromedp.EmulateViewportOption{chromedp.EmulateScale(req.scale())}
	if req.Mobile {
		viewport = append(viewport, chromedp.EmulateMobile, chromedp.EmulateTouch)
	}

	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(req.Width), int64(req.Height), viewport...),
	}
	if req.Dark {
		tasks = append(tasks, emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: "dark"},
		}))
	}
	tasks = append(tasks, chromedp.Navigate(req.URL), chromedp.WaitReady("body"))
	if req.Dark && c.opts.DarkModeKey != "" {
		var ok bool
		tasks = append(tasks,
			chromedp.Evaluate(call(setItemJS, c.opts.DarkModeKey, c.opts.DarkModeValue), &ok),
			chromedp.Reload(),
			chromedp.WaitReady("body"),
		)
	}
	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return nil, classify(err, "could not load %s", req.URL)
	}

	if req.Scroll {
		err := scrollToBottom(timeoutCtx, c.opts,
			func(px int) (bool, error) {
				var done bool
				err := chromedp.Run(timeoutCtx, chromedp.Evaluate(call(scrollStepJS, px), &done))

				return done, err
			},
			func() error {
				var ok bool

				return chromedp.Run(timeoutCtx, chromedp.Evaluate(call(scrollTopJS), &ok))
			},
		)
		if err != nil {
			return nil, classify(err, "could not scroll %s", req.URL)
		}
	}

	var buf []byte
	capture := chromedp.CaptureScreenshot(&buf)
	if req.FullPage {
		capture = chromedp.FullScreenshot(&buf, 100)
	}
	if err := chromedp.Run(timeoutCtx, chromedp.Sleep(c.opts.SettleDelay), capture); err != nil {
		return nil, classify(err, "could not capture %s", req.URL)
	}

	return buf, nil
}

func (c *chromedpCapturer) Close() error {
	c.browserCancel()
	c.allocCancel()

	return nil
}
