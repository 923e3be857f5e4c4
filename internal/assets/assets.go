// Package assets publishes local site images to the object storage bucket
// the showroom serves its catalog pictures from.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"showroom/pkg/logger"
	"showroom/pkg/objectstore"
	"showroom/pkg/serrors"
)

// imageExtensions lists the file types Collect picks up.
var imageExtensions = map[string]bool{ //nolint: gochecknoglobals
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".avif": true,
	".gif":  true,
	".svg":  true,
	".ico":  true,
}

// File is a local image scheduled for upload.
type File struct {
	Path string // Path is the file location on disk.
	Rel  string // Rel is the slash-separated path below the collected root.
	Size int64
}

// Collect expands roots into image files. Directories are walked
// recursively; a file root keeps its base name. A missing root is
// ErrNotFound; two files with the same Rel (and so the same object key) are
// ErrBadRequest.
func Collect(roots []string) ([]File, error) {
	if len(roots) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "no files or directories given")
	}

	var files []File
	seen := make(map[string]string)
	add := func(f File) error {
		if prev, ok := seen[f.Rel]; ok {
			return serrors.With(serrors.ErrBadRequest, "%s and %s both map to %s", prev, f.Path, f.Rel)
		}
		seen[f.Rel] = f.Path
		files = append(files, f)

		return nil
	}

	for _, root := range roots {
		st, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.Wrap(serrors.ErrNotFound, err, "%s not found", root)
		}
		if err != nil {
			return nil, fmt.Errorf("could not stat %s: %w", root, err)
		}

		if !st.IsDir() {
			if IsImage(root) {
				if err := add(File{Path: root, Rel: filepath.Base(root), Size: st.Size()}); err != nil {
					return nil, err
				}
			}

			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !IsImage(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}

			return add(File{Path: p, Rel: filepath.ToSlash(rel), Size: info.Size()})
		})
		if err != nil {
			return nil, fmt.Errorf("could not walk %s: %w", root, err)
		}
	}

	return files, nil
}

// IsImage reports whether p has an image extension.
func IsImage(p string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(p))]
}

// Options configure an Uploader.
type Options struct {
	// Prefix is prepended to every object key.
	Prefix string
	// CacheControl is stored with every object.
	CacheControl string
	// Concurrency bounds parallel uploads; values below 1 mean sequential.
	Concurrency int
	// OnResult, when set, is called after each upload. Calls are serialized.
	OnResult func(Result)
}

// Result is the outcome of one upload.
type Result struct {
	File        File
	Key         string
	URL         string
	ContentType string
	Err         error
}

// Uploader puts files into an objectstore.Client.
type Uploader struct {
	client objectstore.Client
	opts   Options
}

// NewUploader creates an Uploader.
func NewUploader(client objectstore.Client, opts Options) *Uploader {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Uploader{client: client, opts: opts}
}

// Key returns the object key for f.
func (u *Uploader) Key(f File) string {
	return path.Join(strings.Trim(u.opts.Prefix, "/"), f.Rel)
}

// Upload puts every file and returns the results in input order. A failed
// upload does not stop the others; the returned error is ErrCheckFailed
// when any upload failed.
func (u *Uploader) Upload(ctx context.Context, files []File) ([]Result, error) {
	results := make([]Result, len(files))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(u.opts.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			res := u.upload(ctx, f)
			results[i] = res

			if u.opts.OnResult != nil {
				mu.Lock()
				u.opts.OnResult(res)
				mu.Unlock()
			}

			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, serrors.With(serrors.ErrCheckFailed, "%d of %d uploads failed", failed, len(files))
	}

	return results, nil
}

func (u *Uploader) upload(ctx context.Context, f File) Result {
	res := Result{File: f, Key: u.Key(f)}
	if err := ctx.Err(); err != nil {
		res.Err = err

		return res
	}

	mt, err := mimetype.DetectFile(f.Path)
	if err != nil {
		res.Err = fmt.Errorf("could not detect content type: %w", err)

		return res
	}
	res.ContentType = mt.String()

	fh, err := os.Open(f.Path)
	if err != nil {
		res.Err = fmt.Errorf("could not open file: %w", err)

		return res
	}
	defer func() { _ = fh.Close() }()

	obj, err := u.client.Put(ctx, res.Key, fh, f.Size, objectstore.PutOptions{
		ContentType:  res.ContentType,
		CacheControl: u.opts.CacheControl,
	})
	if err != nil {
		res.Err = err
		logger.Warn(ctx, "upload failed", zap.String("file", f.Path), zap.String("key", res.Key), zap.Error(err))

		return res
	}

	res.URL = u.client.URL(res.Key)
	logger.Info(ctx, "uploaded",
		zap.String("file", f.Path),
		zap.String("key", res.Key),
		zap.String("content_type", res.ContentType),
		zap.String("etag", obj.ETag),
	)

	return res
}
