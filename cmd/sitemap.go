package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/config"
	"showroom/internal/sitemap"
	"showroom/pkg/logger"
)

func sitemapCommand(cfg *config.Config) *cobra.Command {
	var output, routesFile, baseURL string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Writes sitemap.xml for every static route, product and blog post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			routes, err := sitemap.LoadRoutes(orDefault(routesFile, cfg.Site.RoutesFile))
			if err != nil {
				return err
			}

			set, err := sitemap.Build(
				orDefault(baseURL, cfg.Site.BaseURL),
				routes.Expand(cfg.Site.ProductPrefix, cfg.Site.BlogPrefix),
				time.Now(),
			)
			if err != nil {
				return err
			}

			out := orDefault(output, cfg.Sitemap.Output)
			if err := sitemap.WriteFile(out, set); err != nil {
				return err
			}

			logger.Info(ctx, "sitemap written", zap.String("path", out), zap.Int("urls", len(set.URLs)))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sitemap written to %s (%d URLs)\n", out, len(set.URLs))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default sitemap.output)")
	cmd.Flags().StringVar(&routesFile, "routes", "", "Routes YAML file (default site.routesFile or the built-in list)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Site origin used in <loc> (default site.baseURL)")

	return cmd
}
