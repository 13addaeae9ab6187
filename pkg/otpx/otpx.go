// Package otpx wraps TOTP secret provisioning and code verification for the
// two-factor login flow.
package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// secretSize is 160 bits of entropy, the conventional size authenticator
// apps expect for SHA1 TOTP.
const secretSize = 20

// b32 is unpadded base32, the otpauth secret alphabet.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// ErrInvalidSecret reports a secret that is not valid unpadded base32.
var ErrInvalidSecret = errors.New("otpx: secret is not valid base32")

// Provisioner generates shared secrets, renders provisioning URIs for
// authenticator apps, and verifies submitted codes.
type Provisioner struct {
	// Issuer is the name shown in the authenticator app.
	Issuer string
}

// GenerateSecret returns a fresh cryptographically random shared secret,
// base32-encoded for authenticator-app compatibility.
func (p *Provisioner) GenerateSecret() (string, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return b32.EncodeToString(secret), nil
}

// ProvisioningURI builds the otpauth:// URL for the given account and secret.
// Deterministic and side-effect free; the client renders it as a QR code.
func (p *Provisioner) ProvisioningURI(account, secret string) (string, error) {
	raw, err := b32.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", ErrInvalidSecret
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.Issuer,
		AccountName: account,
		Secret:      raw,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// Verify checks a submitted six-digit code against the secret. Tolerates one
// 30-second step of clock skew in either direction. Malformed input returns
// false rather than an error.
func (p *Provisioner) Verify(secret, code string) bool {
	return totp.Validate(strings.TrimSpace(code), secret)
}
