package screenshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// scrollStepJS scrolls one step down and reports whether the bottom is reached.
const scrollStepJS = `(step) => {
	window.scrollBy(0, step);
	return window.innerHeight + window.scrollY >= document.documentElement.scrollHeight - 2;
}`

const scrollTopJS = `() => { window.scrollTo(0, 0); return true; }`

const setItemJS = `(key, value) => { localStorage.setItem(key, value); return true; }`

// call renders a JS function applied to args as a plain expression.
func call(fn string, args ...any) string {
	if args == nil {
		args = []any{}
	}
	b, _ := json.Marshal(args)

	return fmt.Sprintf("(%s)(...%s)", fn, b)
}

// scrollToBottom walks the page down step by step so lazy images load, then
// returns to the top. The loop stops at the bottom or after maxScrolls steps.
func scrollToBottom(ctx context.Context, o Options, step func(px int) (bool, error), top func() error) error {
	px := o.ScrollStep
	if px <= 0 {
		px = 600
	}

	for i := 0; i < o.MaxScrolls; i++ {
		done, err := step(px)
		if err != nil {
			return fmt.Errorf("could not scroll: %w", err)
		}
		if err := sleep(ctx, o.ScrollDelay); err != nil {
			return err
		}
		if done {
			break
		}
	}

	if err := top(); err != nil {
		return fmt.Errorf("could not scroll to top: %w", err)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
