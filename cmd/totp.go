package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/config"
	"showroom/internal/totp"
	"showroom/pkg/logger"
)

func totpCommand(cfg *config.Config) *cobra.Command {
	var (
		envFile string
		pngPath string
		pngSize int
	)

	cmd := &cobra.Command{
		Use:   "totp-qr",
		Short: "Prints the admin TOTP enrollment QR code, URI and secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			file := orDefault(envFile, cfg.TOTP.EnvFile)
			secret, err := totp.LoadSecret(file, cfg.TOTP.SecretKey)
			if err != nil {
				return err
			}

			opts := totp.Options{
				Issuer:  cfg.TOTP.Issuer,
				Account: cfg.TOTP.Account,
				Secret:  secret,
				Period:  cfg.TOTP.Period,
				Digits:  cfg.TOTP.Digits,
			}
			uri, err := totp.URI(opts)
			if err != nil {
				return err
			}

			// the QR code is a convenience; the URI below is enough to enroll
			if err := totp.RenderTerminal(out, uri); err != nil {
				logger.Warn(ctx, "could not render QR code", zap.Error(err))
			}

			if pngPath != "" {
				if err := totp.WritePNG(pngPath, uri, pngSize); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "QR code written to %s\n", pngPath)
			}

			code, err := totp.CurrentCode(opts, time.Now())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "URI:          %s\n", uri)
			_, _ = fmt.Fprintf(out, "Secret:       %s\n", secret)
			_, _ = fmt.Fprintf(out, "Current code: %s\n", code)
			logger.Info(ctx, "totp enrollment printed", zap.String("env_file", file), zap.String("issuer", opts.Issuer))

			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file holding the secret (default totp.envFile)")
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write the QR code as a PNG file")
	cmd.Flags().IntVar(&pngSize, "size", 256, "PNG size in pixels")

	return cmd
}
