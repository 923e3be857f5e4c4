package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/assets"
	"showroom/internal/config"
	"showroom/pkg/logger"
	"showroom/pkg/objectstore/s3"
)

func uploadAssetsCommand(cfg *config.Config) *cobra.Command {
	var (
		prefix      string
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "upload-assets <file-or-dir>...",
		Short: "Uploads local images to the object storage bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			files, err := assets.Collect(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				_, _ = fmt.Fprintln(out, "no images found")

				return nil
			}

			client, err := s3.New(s3.Options{
				Endpoint:        cfg.Storage.Endpoint,
				Region:          cfg.Storage.Region,
				Bucket:          cfg.Storage.Bucket,
				UseSSL:          cfg.Storage.UseSSL,
				AccessKeyID:     cfg.Storage.AccessKeyID,
				SecretAccessKey: cfg.Storage.SecretAccessKey,
			})
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("prefix") {
				prefix = cfg.Storage.Prefix
			}
			if concurrency <= 0 {
				concurrency = cfg.Storage.Concurrency
			}

			done := 0
			s := startSpinner(fmt.Sprintf("uploading %d files", len(files)))
			uploader := assets.NewUploader(client, assets.Options{
				Prefix:       prefix,
				CacheControl: cfg.Storage.CacheControl,
				Concurrency:  concurrency,
				OnResult: func(assets.Result) {
					done++
					s.Lock()
					s.Suffix = fmt.Sprintf(" uploading %d/%d files", done, len(files))
					s.Unlock()
				},
			})

			if dryRun {
				stopSpinner(s)
				for _, f := range files {
					_, _ = fmt.Fprintf(out, "%s -> %s\n", f.Path, client.URL(uploader.Key(f)))
				}

				return nil
			}

			results, err := uploader.Upload(ctx, files)
			stopSpinner(s)

			for _, r := range results {
				if r.Err != nil {
					_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", r.File.Path, r.Err)

					continue
				}
				_, _ = fmt.Fprintf(out, "ok   %s -> %s (%s)\n", r.File.Path, r.URL, r.ContentType)
			}
			logger.Info(ctx, "upload finished", zap.Int("files", len(results)), zap.Error(err))

			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix (default storage.prefix)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel uploads (default storage.concurrency)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the target URLs")

	return cmd
}
