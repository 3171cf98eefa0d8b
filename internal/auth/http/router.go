package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	adminToken   string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	TokenService *service.TokenService
	NonceService *service.NonceService
	GameService  *service.GameService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	issuer, buildVersion, adminToken string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		adminToken:   adminToken,
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

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerNonce()
	r.registerCheckin()
	r.registerGames()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{TokenService: r.TokenService}

	// POST /sessions - strict rate limit by IP (anonymous endpoint, and the
	// only place new device rows get created)
	r.Mux.Handle("POST /v1/client/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /sessions/refresh - strict rate limit by IP. Deliberately not
	// behind AuthnMiddleware: the bearer credential here is the refresh
	// token and the service verifies it itself.
	r.Mux.Handle("POST /v1/client/sessions/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerNonce() {
	h := &NonceHandler{NonceService: r.NonceService}

	// GET /nonce - moderate rate limit by device
	r.Mux.Handle("GET /v1/client/nonce",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByDevice(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCheckin() {
	h := &CheckinHandler{TokenService: r.TokenService}

	// POST /checkin - authenticated and nonce-gated. The rate limit runs
	// before the nonce check so a 429 does not burn the nonce.
	r.Mux.Handle("POST /v1/client/checkin",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByDevice(httpx.ModerateLimit),
			RequireNonce(r.NonceService),
		),
	)
}

func (r *Router) registerGames() {
	h := &GamesHandler{GameService: r.GameService, AdminToken: r.adminToken}

	// Operator endpoints - strict rate limit by IP
	r.Mux.Handle("POST /v1/games",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/games/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health and key discovery - public rate limits (monitoring may poll)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
