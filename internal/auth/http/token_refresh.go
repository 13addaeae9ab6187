package http

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/jwtx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// Headers the continuity middleware sets when it silently reissues a token.
// The client must swap in the new access token on its next request; the
// response body it arrived with was served under the old identity.
const (
	HeaderNewAccessToken = "X-New-Access-Token"
	HeaderTokenRefreshed = "X-Token-Refreshed"
)

// DefaultRefreshThreshold is how close to expiry an access token must be
// before the middleware reissues it.
const DefaultRefreshThreshold = 5 * time.Minute

// TokenRefreshConfig configures the session-continuity middleware.
type TokenRefreshConfig struct {
	AuthService *service.AuthService
	Codec       *jwtx.Codec

	// Threshold is the remaining-lifetime cutoff below which a new access
	// token is minted. Zero means DefaultRefreshThreshold.
	Threshold time.Duration

	// SkipPaths are path prefixes the middleware passes through untouched
	// (the auth endpoints themselves, docs, health probes).
	SkipPaths []string
}

// TokenRefresh keeps sessions alive across access-token expiry. When the
// bearer token on a request is within Threshold of expiring and a refresh
// cookie is present, it mints a new access token after the handler has run
// and attaches it via response headers. Refresh failures never affect the
// response; they are logged and swallowed.
//
// The response is buffered because the expiry check happens after the
// handler finishes, and headers cannot be added once the body has been
// written through.
func TokenRefresh(cfg TokenRefreshConfig) httpx.Middleware {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range cfg.SkipPaths {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			accessToken := bearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			buf := newBufferedResponse()
			next.ServeHTTP(buf, r)

			if expiry, err := cfg.Codec.ExpiryOf(accessToken); err == nil && time.Until(expiry) < threshold {
				if refreshToken := refreshTokenFromCookie(r); refreshToken != "" {
					newAccess, err := cfg.AuthService.RefreshTokens(r.Context(), refreshToken)
					if err != nil {
						slogx.FromContext(r.Context()).Warn("token auto-refresh failed", "err", err)
					} else {
						buf.Header().Set(HeaderNewAccessToken, newAccess)
						buf.Header().Set(HeaderTokenRefreshed, "true")
						slogx.FromContext(r.Context()).Info("token auto-refreshed", "path", r.URL.Path)
					}
				}
			}

			buf.flushTo(w)
		})
	}
}

// bufferedResponse holds the handler's output so headers can still be added
// after it returns.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) { b.status = code }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, vv := range b.header {
		dst[k] = vv
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
