package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the configuration shared by every showroomctl subcommand.
// Values come from the YAML config file and are overridden by environment
// variables.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Log configures the optional rotating log file
	Log struct {
		// File is the log file path; empty disables file logging
		File string `env:"LOG_FILE" yaml:"file"`
		// MaxSizeMB is the size after which the log file is rotated
		MaxSizeMB int `env:"LOG_MAX_SIZE_MB" env-default:"10" yaml:"maxSizeMB"`
		// MaxBackups is the number of rotated files kept
		MaxBackups int `env:"LOG_MAX_BACKUPS" env-default:"3" yaml:"maxBackups"`
		// MaxAgeDays is how long rotated files are kept
		MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" env-default:"28" yaml:"maxAgeDays"`
	} `yaml:"log"`

	// Site describes the public site and its build layout
	Site struct {
		// BaseURL is the canonical origin used in sitemap <loc> values
		BaseURL string `env:"SITE_BASE_URL" env-default:"https://mebel-showroom.ru" yaml:"baseURL"`
		// PublicDir holds static files copied verbatim into the build (robots.txt, sitemap.xml)
		PublicDir string `env:"SITE_PUBLIC_DIR" env-default:"public" yaml:"publicDir"`
		// DistDir is the build output containing pre-rendered HTML
		DistDir string `env:"SITE_DIST_DIR" env-default:"dist" yaml:"distDir"`
		// RoutesFile lists static routes, product slugs and blog slugs; empty uses the built-in list
		RoutesFile string `env:"SITE_ROUTES_FILE" yaml:"routesFile"`
		// ProductPrefix is prepended to product slugs
		ProductPrefix string `env:"SITE_PRODUCT_PREFIX" env-default:"/product/" yaml:"productPrefix"`
		// BlogPrefix is prepended to blog slugs
		BlogPrefix string `env:"SITE_BLOG_PREFIX" env-default:"/blog/" yaml:"blogPrefix"`
		// AssetsPrefix is the URL prefix of fingerprinted build assets
		AssetsPrefix string `env:"SITE_ASSETS_PREFIX" env-default:"/assets/" yaml:"assetsPrefix"`
	} `yaml:"site"`

	// Sitemap configures the sitemap generator
	Sitemap struct {
		// Output is where sitemap.xml is written
		Output string `env:"SITEMAP_OUTPUT" env-default:"public/sitemap.xml" yaml:"output"`
	} `yaml:"sitemap"`

	// Check configures the indexation checker
	Check struct {
		// Sitemap is the sitemap read by the checker; empty uses Sitemap.Output
		Sitemap string `env:"CHECK_SITEMAP" yaml:"sitemap"`
		// Robots is the robots.txt path; empty uses <PublicDir>/robots.txt
		Robots string `env:"CHECK_ROBOTS" yaml:"robots"`
		// LiveTimeout bounds every live HEAD request
		LiveTimeout time.Duration `env:"CHECK_LIVE_TIMEOUT" env-default:"10s" yaml:"liveTimeout"`
		// UserAgent is sent with live requests
		UserAgent string `env:"CHECK_USER_AGENT" env-default:"showroomctl-indexcheck/1.0" yaml:"userAgent"`
		// ExpectedLanguage is the ISO 639-3 code pages are expected to be written in; empty disables the check
		ExpectedLanguage string `env:"CHECK_EXPECTED_LANGUAGE" env-default:"rus" yaml:"expectedLanguage"`
	} `yaml:"check"`

	// TOTP configures the admin two-factor setup helper
	TOTP struct {
		// EnvFile is the dotenv file holding the secret
		EnvFile string `env:"TOTP_ENV_FILE" env-default:".env" yaml:"envFile"`
		// SecretKey is the variable name of the secret inside EnvFile
		SecretKey string `env:"TOTP_SECRET_KEY" env-default:"VITE_TOTP_SECRET" yaml:"secretKey"`
		// Issuer is shown by authenticator apps
		Issuer string `env:"TOTP_ISSUER" env-default:"Showroom Admin" yaml:"issuer"`
		// Account is the account label shown by authenticator apps
		Account string `env:"TOTP_ACCOUNT" env-default:"admin" yaml:"account"`
		// Period is the code validity window
		Period uint `env:"TOTP_PERIOD" env-default:"30" yaml:"period"`
		// Digits is the code length (6 or 8)
		Digits int `env:"TOTP_DIGITS" env-default:"6" yaml:"digits"`
	} `yaml:"totp"`

	// Browser configures the browser used by the screenshot tools
	Browser struct {
		// Driver selects the automation library: chromedp or rod
		Driver string `env:"BROWSER_DRIVER" env-default:"chromedp" yaml:"driver"`
		// ExecPath is the browser binary; empty lets the driver find one
		ExecPath string `env:"BROWSER_EXEC_PATH" yaml:"execPath"`
		// Headless runs the browser without a window
		Headless bool `env:"BROWSER_HEADLESS" env-default:"true" yaml:"headless"`
		// NoSandbox disables the Chromium sandbox (containers, CI)
		NoSandbox bool `env:"BROWSER_NO_SANDBOX" env-default:"false" yaml:"noSandbox"`
		// NavigationTimeout bounds a whole capture
		NavigationTimeout time.Duration `env:"BROWSER_NAVIGATION_TIMEOUT" env-default:"30s" yaml:"navigationTimeout"`
		// SettleDelay is waited after load and scrolling before capturing
		SettleDelay time.Duration `env:"BROWSER_SETTLE_DELAY" env-default:"1s" yaml:"settleDelay"`
		// ScrollStep is the number of pixels scrolled per step
		ScrollStep int `env:"BROWSER_SCROLL_STEP" env-default:"600" yaml:"scrollStep"`
		// ScrollDelay is waited after every scroll step
		ScrollDelay time.Duration `env:"BROWSER_SCROLL_DELAY" env-default:"250ms" yaml:"scrollDelay"`
		// MaxScrolls caps the scroll loop on infinite pages
		MaxScrolls int `env:"BROWSER_MAX_SCROLLS" env-default:"50" yaml:"maxScrolls"`
		// DarkModeKey is the localStorage key the site reads its theme from
		DarkModeKey string `env:"BROWSER_DARK_MODE_KEY" env-default:"theme" yaml:"darkModeKey"`
		// DarkModeValue is the localStorage value enabling the dark theme
		DarkModeValue string `env:"BROWSER_DARK_MODE_VALUE" env-default:"dark" yaml:"darkModeValue"`
	} `yaml:"browser"`

	// Screenshot configures the screenshot tools
	Screenshot struct {
		// BaseURL is the origin page paths are resolved against
		BaseURL string `env:"SCREENSHOT_BASE_URL" env-default:"http://localhost:4173" yaml:"baseURL"`
		// OutputDir is where captures are written
		OutputDir string `env:"SCREENSHOT_OUTPUT_DIR" env-default:"screenshots" yaml:"outputDir"`
		// Width is the desktop viewport width
		Width int `env:"SCREENSHOT_WIDTH" env-default:"1440" yaml:"width"`
		// Height is the desktop viewport height
		Height int `env:"SCREENSHOT_HEIGHT" env-default:"900" yaml:"height"`
		// MobileWidth is the mobile viewport width
		MobileWidth int `env:"SCREENSHOT_MOBILE_WIDTH" env-default:"390" yaml:"mobileWidth"`
		// MobileHeight is the mobile viewport height
		MobileHeight int `env:"SCREENSHOT_MOBILE_HEIGHT" env-default:"844" yaml:"mobileHeight"`
		// MobileScale is the device scale factor used for mobile captures
		MobileScale float64 `env:"SCREENSHOT_MOBILE_SCALE" env-default:"3" yaml:"mobileScale"`
		// Pages lists the paths captured by screenshot-pages
		Pages []string `env:"SCREENSHOT_PAGES" env-default:"/,/catalog,/about,/contacts" env-separator:"," yaml:"pages"`
	} `yaml:"screenshot"`

	// Storage configures the S3-compatible bucket used by upload-assets
	Storage struct {
		// Endpoint is the S3 API host, without scheme
		Endpoint string `env:"STORAGE_ENDPOINT" env-default:"storage.yandexcloud.net" yaml:"endpoint"`
		// Region is the bucket region
		Region string `env:"STORAGE_REGION" env-default:"ru-central1" yaml:"region"`
		// Bucket is the target bucket
		Bucket string `env:"STORAGE_BUCKET" yaml:"bucket"`
		// UseSSL selects https for the endpoint
		UseSSL bool `env:"STORAGE_USE_SSL" env-default:"true" yaml:"useSSL"`
		// AccessKeyID is read from the environment only
		AccessKeyID string `env:"STORAGE_ACCESS_KEY_ID" yaml:"-"`
		// SecretAccessKey is read from the environment only
		SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY" yaml:"-"`
		// Prefix is prepended to every object key
		Prefix string `env:"STORAGE_PREFIX" env-default:"images" yaml:"prefix"`
		// CacheControl is stored with every object
		CacheControl string `env:"STORAGE_CACHE_CONTROL" env-default:"public, max-age=31536000" yaml:"cacheControl"`
		// Concurrency is the number of parallel uploads; 1 uploads sequentially
		Concurrency int `env:"STORAGE_CONCURRENCY" env-default:"1" yaml:"concurrency"`
	} `yaml:"storage"`

	// HTTP configures the preview server
	HTTP struct {
		// Addr is the address and port the preview server listens on
		Addr string `env:"HTTP_ADDR" env-default:":4173" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes read parsing request headers
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// GracefulShutdownTimeout is the maximum duration to wait for in-flight requests during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: defaults and environment variables are used.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// SitemapPath returns the sitemap read by the indexation checker.
func (c *Config) SitemapPath() string {
	if c.Check.Sitemap != "" {
		return c.Check.Sitemap
	}

	return c.Sitemap.Output
}

// RobotsPath returns the robots.txt read by the indexation checker.
func (c *Config) RobotsPath() string {
	if c.Check.Robots != "" {
		return c.Check.Robots
	}

	return filepath.Join(c.Site.PublicDir, "robots.txt")
}
