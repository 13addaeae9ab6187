package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/internal/auth/store"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/jwtx"
	"github.com/slavborworld/auth/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec            *jwtx.Codec
	buildVersion     string
	startTime        time.Time
	logger           *slog.Logger
	refreshThreshold time.Duration

	store     store.Store
	blacklist store.Blacklist

	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	refreshThreshold time.Duration,
	st store.Store,
	bl store.Blacklist,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:              http.NewServeMux(),
		codec:            codec,
		buildVersion:     buildVersion,
		startTime:        time.Now(),
		logger:           logger,
		refreshThreshold: refreshThreshold,
		store:            st,
		blacklist:        bl,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every endpoint and finalizes the middleware chain.
// Call after the services are assigned.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Session continuity runs inside the logging middleware so refreshed
	// requests still log with their request ID.
	r.middlewares = append(r.middlewares, TokenRefresh(TokenRefreshConfig{
		AuthService: r.AuthService,
		Codec:       r.codec,
		Threshold:   r.refreshThreshold,
		SkipPaths:   []string{"/api/auth/", "/api/ping", "/api/health", "/swagger/"},
	}))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Slavbor World Auth Service API
//	@version		0.1.0
//	@description	Authentication for the Slavbor World wiki: password login with TOTP two-factor authentication, HS256 JWT access/refresh tokens, and Redis-backed token revocation.
//	@description
//	@description				Refresh tokens travel only in the httpOnly refresh_token cookie. Near-expiry access tokens are silently reissued via the X-New-Access-Token response header.
//
//	@host						localhost:8000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit (password guessing)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /2fa/verify - strict rate limit (OTP brute force)
	r.Mux.Handle("POST /api/auth/2fa/verify",
		httpx.Chain(&TwoFAVerifyHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(&RefreshHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET /api/users/me",
		httpx.Chain(&UserInfoHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	h := &UsersHandler{AuthService: r.AuthService, UserService: r.UserService}
	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll these frequently; keep the limits lenient.
	r.Mux.Handle("GET /api/ping",
		httpx.Chain(PingHandler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/health",
		httpx.Chain(HealthHandler(r.startTime, r.buildVersion, r.store, r.blacklist),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
