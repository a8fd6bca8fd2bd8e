package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"

	_ "github.com/aussiebroadwan/tokengate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	info   ServiceInfo
	logger *slog.Logger

	db      Pinger
	tenants HealthReporter

	TokenService      *service.TokenService
	ValidationService *service.ValidationService

	// BackendNames lists the enabled backends for GET /backends.
	BackendNames func() []string
}

func NewRouter(
	buildVersion, instanceUUID string,
	db Pinger,
	tenants HealthReporter,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux: http.NewServeMux(),
		info: ServiceInfo{
			Started:      time.Now(),
			Version:      buildVersion,
			InstanceUUID: instanceUUID,
		},
		db:      db,
		tenants: tenants,
		logger:  logger,
	}

	// Probes are logged at debug so they do not drown the access log.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz"),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tokengate Token Service API
//	@version		0.1.0
//	@description	Issues opaque access tokens after authenticating users against pluggable backends, and answers token validation requests with ACL and tenant checks.
//	@description
//	@description				Offline tokens carry a refresh token; one refresh token exists per user and client.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tokengate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.basic	BasicAuth
//
//	@securityDefinitions.apikey	AuthToken
//	@in							header
//	@name						X-Auth-Token
//	@description				Access token whose ACLs grant the route's scope.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	h := &TokenHandler{
		Tokens:       r.TokenService,
		Validator:    r.ValidationService,
		InstanceUUID: r.info.InstanceUUID,
	}

	// POST /token - strict limit by IP and login (password guessing)
	r.Mux.Handle("POST /token",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIPAndLogin(httpx.TokenLimit),
		),
	)

	// Validation is called by every service on every request, so it gets
	// the loosest profile.
	validate := httpx.RateLimitByIP(httpx.ValidateLimit)
	r.Mux.Handle("GET /token/{token}", httpx.Chain(http.HandlerFunc(h.HandleGet), validate))
	r.Mux.Handle("HEAD /token/{token}", httpx.Chain(http.HandlerFunc(h.HandleHead), validate))
	r.Mux.Handle("DELETE /token/{token}", httpx.Chain(http.HandlerFunc(h.HandleDelete), validate))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Validator: r.ValidationService}
	verify := callerVerifier(r.ValidationService)

	r.Mux.Handle("GET /users/{auth_id}/tokens",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.AdminLimit),
			httpx.RequireToken(verify, listTokensScope, writeError),
			httpx.RateLimitByCaller(httpx.AdminLimit),
		),
	)
	r.Mux.Handle("DELETE /users/{auth_id}/tokens/{client_id}",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RateLimitByIP(httpx.AdminLimit),
			httpx.RequireToken(verify, revokeTokenScope, writeError),
			httpx.RateLimitByCaller(httpx.AdminLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.info),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.info, r.db, r.tenants),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
	r.Mux.Handle("GET /backends",
		httpx.Chain(BackendsHandler(r.BackendNames),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
}
