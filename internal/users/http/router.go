package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/internal/users/store"
	"github.com/chirpnet/chirp/pkg/httpx"
	"github.com/chirpnet/chirp/pkg/jwtx"
	"github.com/chirpnet/chirp/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "users"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Accounts *service.AccountService
	Follows  *service.FollowService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerVerifyEmail()
	r.registerPasswordReset()
	r.registerProfiles()
	r.registerFollows()
	r.registerSystem()
}

// handle registers a route with the metrics middleware inside the mux so
// the route label sees the matched pattern.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	mws = append([]httpx.Middleware{httpx.MetricsMiddleware(serviceName)}, mws...)
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.Accounts}

	// Credential endpoints get the strict limit to slow brute force.
	r.handle("POST /users/register", http.HandlerFunc(h.Register),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /users/login", http.HandlerFunc(h.Login),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /users/logout", http.HandlerFunc(h.Logout),
		httpx.AuthnMiddleware(r.codec),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerVerifyEmail() {
	h := &VerifyEmailHandler{Accounts: r.Accounts, Codec: r.codec}

	r.handle("POST /users/verify-email", http.HandlerFunc(h.Verify),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /users/resend-verify-email", http.HandlerFunc(h.Resend),
		httpx.AuthnMiddleware(r.codec),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)
}

func (r *Router) registerPasswordReset() {
	h := &PasswordResetHandler{Accounts: r.Accounts}

	r.handle("POST /users/forgot-password", http.HandlerFunc(h.Forgot),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /users/verify-forgot-password", http.HandlerFunc(h.VerifyToken),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /users/reset-password", http.HandlerFunc(h.Reset),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
}

func (r *Router) registerProfiles() {
	me := &MeHandler{Accounts: r.Accounts}
	profile := &ProfileHandler{Accounts: r.Accounts}

	r.handle("GET /users/me", http.HandlerFunc(me.Get),
		httpx.AuthnMiddleware(r.codec),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("PATCH /users/me", http.HandlerFunc(me.Patch),
		httpx.AuthnMiddleware(r.codec),
		httpx.RequireVerify(string(domain.VerifyVerified)),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("GET /users/{username}", http.HandlerFunc(profile.Get),
		httpx.RateLimitByIP(httpx.PublicLimit),
	)
}

func (r *Router) registerFollows() {
	h := &FollowHandler{Follows: r.Follows}

	r.handle("POST /users/follow", http.HandlerFunc(h.Follow),
		httpx.AuthnMiddleware(r.codec),
		httpx.RequireVerify(string(domain.VerifyVerified)),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("DELETE /users/follow/{user_id}", http.HandlerFunc(h.Unfollow),
		httpx.AuthnMiddleware(r.codec),
		httpx.RequireVerify(string(domain.VerifyVerified)),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
