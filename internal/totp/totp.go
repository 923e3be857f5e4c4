// Package totp prepares the admin two-factor login: it reads the shared
// secret from the site's dotenv file and turns it into an otpauth:// URI
// that authenticator apps can import from a QR code.
package totp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"

	"showroom/pkg/serrors"
)

// Options describe the key an authenticator app should create.
type Options struct {
	Issuer  string
	Account string
	Secret  string
	Period  uint
	Digits  int
}

// LoadSecret reads key from the dotenv file at path. Only the file is
// consulted; the process environment is ignored.
func LoadSecret(path, key string) (string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", serrors.Wrap(serrors.ErrNotFound, err, "secret file %s not found", path)
	}
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "could not parse %s", path)
	}

	raw, ok := values[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", serrors.With(serrors.ErrNotFound, "%s is not set in %s", key, path)
	}

	return NormalizeSecret(raw)
}

// NormalizeSecret upper-cases a base32 secret, drops spaces, dashes and
// padding, and rejects anything that does not decode.
func NormalizeSecret(raw string) (string, error) {
	s := strings.ToUpper(raw)
	s = strings.NewReplacer(" ", "", "-", "", "=", "", "\t", "").Replace(s)
	if s == "" {
		return "", serrors.With(serrors.ErrBadRequest, "secret is empty")
	}
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s); err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "secret is not valid base32")
	}

	return s, nil
}

// URI builds the otpauth:// URI for o and checks that it parses back into
// a key.
func URI(o Options) (string, error) {
	if o.Issuer == "" || o.Account == "" {
		return "", serrors.With(serrors.ErrInvalidConfig, "issuer and account are required")
	}
	if o.Digits != int(otp.DigitsSix) && o.Digits != int(otp.DigitsEight) {
		return "", serrors.With(serrors.ErrInvalidConfig, "digits must be 6 or 8, got %d", o.Digits)
	}
	if o.Period == 0 {
		return "", serrors.With(serrors.ErrInvalidConfig, "period must be positive")
	}

	q := url.Values{}
	q.Set("secret", o.Secret)
	q.Set("issuer", o.Issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", strconv.Itoa(o.Digits))
	q.Set("period", strconv.FormatUint(uint64(o.Period), 10))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + o.Issuer + ":" + o.Account,
		RawQuery: q.Encode(),
	}
	uri := u.String()

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("could not parse generated URI: %w", err)
	}
	if key.Secret() != o.Secret {
		return "", serrors.With(serrors.ErrInternal, "generated URI does not round-trip the secret")
	}

	return uri, nil
}

// CurrentCode returns the code an authenticator app shows at t, so the
// operator can confirm the imported key.
func CurrentCode(o Options, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(o.Secret, t, totp.ValidateOpts{
		Period:    o.Period,
		Digits:    otp.Digits(o.Digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("could not generate code: %w", err)
	}

	return code, nil
}

// RenderTerminal draws uri as a half-block QR code on w.
func RenderTerminal(w io.Writer, uri string) error {
	// qrterminal swallows encoding errors, so check the payload fits first
	if _, err := qrcode.New(uri, qrcode.Low); err != nil {
		return fmt.Errorf("could not encode QR code: %w", err)
	}

	qrterminal.GenerateWithConfig(uri, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})

	return nil
}

// WritePNG writes uri as a size×size PNG QR code.
func WritePNG(path, uri string, size int) error {
	if err := qrcode.WriteFile(uri, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("could not write QR code to %s: %w", path, err)
	}

	return nil
}
