package screenshot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"showroom/internal/screenshot"
	mockscreenshot "showroom/internal/screenshot/mock"
	"showroom/pkg/serrors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n") //nolint: gochecknoglobals

func TestNew_UnknownDriver(t *testing.T) {
	_, err := screenshot.New(context.Background(), screenshot.Options{Driver: "selenium"})
	require.ErrorIs(t, err, serrors.ErrInvalidConfig)
}

func TestTake(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)

	out := filepath.Join(t.TempDir(), "shots", "home.png")
	req := screenshot.Request{URL: "http://localhost:4173/", Output: out, Width: 1440, Height: 900, FullPage: true}
	c.EXPECT().Capture(gomock.Any(), req).Return(pngHeader, nil)

	require.NoError(t, screenshot.Take(context.Background(), c, req))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, pngHeader, b)
}

func TestTake_InvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)

	cases := []screenshot.Request{
		{Output: "x.png", Width: 10, Height: 10},
		{URL: "http://localhost:4173/", Output: "x.png"},
		{URL: "http://localhost:4173/", Width: 10, Height: 10},
	}
	for _, req := range cases {
		require.ErrorIs(t, screenshot.Take(context.Background(), c, req), serrors.ErrBadRequest)
	}
}

func TestTake_CaptureError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)

	out := filepath.Join(t.TempDir(), "home.png")
	c.EXPECT().Capture(gomock.Any(), gomock.Any()).Return(nil, serrors.With(serrors.ErrTimeout, "navigation timed out"))

	err := screenshot.Take(context.Background(), c, screenshot.Request{URL: "http://localhost:4173/", Output: out, Width: 1, Height: 1})
	require.ErrorIs(t, err, serrors.ErrTimeout)
	require.NoFileExists(t, out)
}

func TestPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)
	dir := t.TempDir()

	opts := screenshot.PagesOptions{
		BaseURL:   "http://localhost:4173",
		OutputDir: dir,
		Pages:     []string{"/", "/catalog/sofas"},
		Desktop:   screenshot.Viewport{Width: 1440, Height: 900},
		Mobile:    screenshot.Viewport{Width: 390, Height: 844, Scale: 3},
		Scroll:    true,
	}

	var got []screenshot.Request
	c.EXPECT().Capture(gomock.Any(), gomock.Any()).Times(8).DoAndReturn(
		func(_ context.Context, req screenshot.Request) ([]byte, error) {
			got = append(got, req)
			if req.URL == "http://localhost:4173/catalog/sofas" && req.Dark && req.Mobile {
				return nil, errors.New("tab crashed")
			}

			return pngHeader, nil
		})

	shots, err := screenshot.Pages(context.Background(), c, opts)
	require.ErrorIs(t, err, serrors.ErrCheckFailed)
	require.Len(t, shots, 8)

	require.Equal(t, filepath.Join(dir, "home-desktop.png"), shots[0].Output)
	require.Equal(t, filepath.Join(dir, "catalog-sofas-mobile-dark.png"), shots[7].Output)
	require.Error(t, shots[7].Err)
	for _, s := range shots[:7] {
		require.NoError(t, s.Err)
		require.FileExists(t, s.Output)
	}

	require.Equal(t, 390, got[2].Width)
	require.InDelta(t, 3, got[2].Scale, 0)
	require.True(t, got[2].Mobile)
	require.True(t, got[1].Dark)
	require.True(t, got[1].Scroll)
	require.Equal(t, 1440, got[1].Width)
}

func TestPages_CustomVariants(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)

	c.EXPECT().Capture(gomock.Any(), gomock.Any()).Times(2).Return(pngHeader, nil)

	shots, err := screenshot.Pages(context.Background(), c, screenshot.PagesOptions{
		BaseURL:   "http://localhost:4173",
		OutputDir: t.TempDir(),
		Pages:     []string{"/about", "/contacts"},
		Variants:  []screenshot.Variant{{Name: "dark", Dark: true}},
		Desktop:   screenshot.Viewport{Width: 1280, Height: 800},
	})
	require.NoError(t, err)
	require.Len(t, shots, 2)
}

func TestPages_InvalidBaseURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockscreenshot.NewMockCapturer(ctrl)

	_, err := screenshot.Pages(context.Background(), c, screenshot.PagesOptions{BaseURL: "localhost", Pages: []string{"/"}})
	require.ErrorIs(t, err, serrors.ErrInvalidConfig)
}
