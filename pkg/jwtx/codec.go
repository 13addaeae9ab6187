package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token with the flow it belongs to. Endpoints must reject
// tokens whose type does not match what they expect.
type TokenType string

const (
	// TokenTypeAccess is the short-lived bearer credential for API calls.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is the long-lived, cookie-delivered credential used
	// solely to mint new access tokens.
	TokenTypeRefresh TokenType = "refresh"

	// TokenTypeTemp carries an in-progress 2FA challenge. Its subject is the
	// user id rather than the email.
	TokenTypeTemp TokenType = "temp"
)

// Token lifetimes. These are part of the API contract with the frontend
// (the refresh cookie max-age matches RefreshTokenTTL).
const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
	TempTokenTTL    = 5 * time.Minute
)

var (
	// ErrInvalidToken covers every decode failure: bad signature, malformed
	// payload, wrong algorithm, or expired. Callers that need to distinguish
	// revocation must check the blacklist separately.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrMissingSecret reports a codec constructed without a signing secret.
	ErrMissingSecret = errors.New("jwtx: signing secret is empty")

	// ErrUnsupportedAlgorithm reports a non-HMAC signing algorithm. This
	// codec only does shared-secret signing.
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported signing algorithm")
)

// Claims is the payload embedded in every token.
type Claims struct {
	jwt.RegisteredClaims

	TokenType TokenType `json:"token_type"`
}

// Codec issues and decodes HMAC-signed, expiring tokens. Decode is
// deterministic and side-effect free; it never consults the blacklist.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
}

// NewCodec builds a codec for the given shared secret and HMAC algorithm
// (HS256, HS384 or HS512).
func NewCodec(secret, algorithm, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, ErrUnsupportedAlgorithm
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrUnsupportedAlgorithm
	}

	return &Codec{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
	}, nil
}

// Issue signs a token carrying the subject, type tag and an absolute expiry
// ttl from now. A negative ttl produces an already-expired token, which
// Decode will reject.
func (c *Codec) Issue(subject string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}

	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the payload. Every
// failure mode collapses to ErrInvalidToken so the caller can't leak why a
// credential was rejected.
func (c *Codec) Decode(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// ExpiryOf returns the absolute expiry of a token. The signature is still
// verified but the expiry itself is not: revocation needs the expiry of
// tokens that have already lapsed.
func (c *Codec) ExpiryOf(raw string) (time.Time, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}

	return claims.ExpiresAt.Time, nil
}
