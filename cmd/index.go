package main

import (
	"net/http"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/config"
	"showroom/internal/indexcheck"
	"showroom/pkg/logger"
	"showroom/pkg/metrics"
	"showroom/pkg/serrors"
)

func checkIndexCommand(cfg *config.Config) *cobra.Command {
	var (
		live        bool
		metricsFile string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check-index",
		Short: "Checks that every sitemap URL has indexable pre-rendered HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if timeout <= 0 {
				timeout = cfg.Check.LiveTimeout
			}
			checker := indexcheck.New(indexcheck.Options{
				BaseURL:          cfg.Site.BaseURL,
				SitemapPath:      cfg.SitemapPath(),
				RobotsPath:       cfg.RobotsPath(),
				DistDir:          cfg.Site.DistDir,
				Live:             live,
				LiveTimeout:      timeout,
				UserAgent:        cfg.Check.UserAgent,
				ExpectedLanguage: cfg.Check.ExpectedLanguage,
			}, &http.Client{}, metrics.NewIndexCheck())

			var s *spinner.Spinner
			if live {
				s = startSpinner("checking live URLs")
			}
			report, err := checker.Run(ctx)
			stopSpinner(s)
			if err != nil {
				return err
			}

			if err := indexcheck.Render(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := checker.Metrics().WriteTextfile(metricsFile); err != nil {
					return err
				}
				logger.Debug(ctx, "metrics written", zap.String("path", metricsFile))
			}

			logger.Info(ctx, "indexation check finished",
				zap.Int("routes", len(report.Routes)),
				zap.Int("failures", report.Failures("")),
				zap.Int("warnings", report.Warnings("")),
			)
			if report.Failed() {
				return serrors.With(serrors.ErrCheckFailed, "%d checks failed", report.Failures(""))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Also send a HEAD request to every sitemap URL")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout of live checks (default check.liveTimeout)")

	return cmd
}
