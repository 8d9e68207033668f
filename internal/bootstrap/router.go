package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/folio-review/folio-backend/internal/api/http"
	apimw "github.com/folio-review/folio-backend/internal/api/http/middleware"
	"github.com/folio-review/folio-backend/internal/auth"
	authhttp "github.com/folio-review/folio-backend/internal/auth/http"
	authmw "github.com/folio-review/folio-backend/internal/auth/middleware"
	"github.com/folio-review/folio-backend/internal/metrics"
	"github.com/folio-review/folio-backend/internal/pkg/logger"
	portfolioshttp "github.com/folio-review/folio-backend/internal/portfolios/http"
	"github.com/folio-review/folio-backend/internal/users"
)

type UserStore interface {
	auth.UserEnsurer
	authhttp.UserReader
}

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Logger         *logger.Logger
	Metrics        *metrics.Metrics

	// HealthChecks are reported by /health by name.
	HealthChecks map[string]httpapi.Pinger

	// Verifier checks Firebase ID tokens. When nil, the caller identity is
	// taken from the X-User-Id header (development only).
	Verifier    authmw.TokenVerifier
	Users       UserStore
	RateLimiter *apimw.RateLimiter
	Portfolios  *portfolioshttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", apimw.HeaderRequestID},
		ExposeHeaders:    []string{apimw.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.HealthChecks)
	healthHandler.RegisterRoutes(r)

	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	} else {
		api.Use(auth.OptionalUser())
	}
	api.Use(auth.WithUser(dep.Users))
	if dep.RateLimiter != nil {
		api.Use(dep.RateLimiter.Middleware(auth.UserDBID))
	}

	authhttp.New(dep.Users).Register(api)

	dep.Portfolios.Register(api)
	admin := api.Group("/admin")
	admin.Use(auth.RequireAdmin())
	dep.Portfolios.RegisterAdmin(admin)
	dep.Portfolios.RegisterAdminAliases(api.Group("/portfolio", auth.RequireAdmin()))

	return r
}

var _ UserStore = (*users.Repo)(nil)
