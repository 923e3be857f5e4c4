package screenshot

import "context"

// Capturer drives a browser and returns PNG captures.
//
//go:generate mockgen -package mockscreenshot -source=interface.go -destination=mock/mockscreenshot.go *
type Capturer interface {
	// Capture loads req.URL with the requested viewport and effects and
	// returns the PNG bytes.
	Capture(ctx context.Context, req Request) ([]byte, error)
	// Close shuts the browser down.
	Close() error
}
