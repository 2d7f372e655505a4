package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/stackbase/identity-api/docs"
	"github.com/stackbase/identity-api/internal/api/handler"
	"github.com/stackbase/identity-api/internal/api/middleware"
	"github.com/stackbase/identity-api/internal/core/domain"
	"github.com/stackbase/identity-api/internal/core/guard"
	"github.com/stackbase/identity-api/internal/core/hash"
	"github.com/stackbase/identity-api/internal/core/ports"
	"github.com/stackbase/identity-api/internal/core/service"
	"github.com/stackbase/identity-api/internal/core/session"
	"github.com/stackbase/identity-api/internal/core/token"
)

// Deps carries everything the router needs. Mongo, Redis, Throttle, and
// Mail are optional: nil values disable the readiness check, the login
// throttle, or outbound mail respectively.
type Deps struct {
	Users      ports.UserRepository
	Mongo      *mongo.Database
	Redis      *redis.Client
	Throttle   ports.LoginThrottle
	Mail       service.MailDispatcher
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Metrics    bool
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	if deps.Metrics {
		e.Use(echoprometheus.NewMiddleware("identity"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Core wiring ---
	hasher := hash.NewHasher(deps.BcryptCost)
	tokens := token.NewService(deps.JWTSecret, deps.TokenTTL, deps.Log)
	resolver := session.NewResolver(tokens)
	authService := service.NewAuthService(deps.Users, hasher, tokens, deps.Throttle, deps.Mail, deps.Log)
	userService := service.NewUserService(deps.Users, hasher, deps.Mail, deps.Log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	authenticate := middleware.Authenticate(resolver)

	// --- Public auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Own-profile routes: any authenticated role ---
	anyRole := middleware.Guards(guard.RequireAnyRole(domain.RoleAdmin, domain.RoleManager, domain.RoleUser))
	users := e.Group("/users", authenticate, anyRole)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.DELETE("/me", userHandler.DeleteMe)

	// --- Admin routes: reads for admin+manager, writes for admin only ---
	admin := e.Group("/admin", authenticate)
	admin.GET("/users/:id", userHandler.AdminGet,
		middleware.Guards(guard.RequireAnyRole(domain.RoleAdmin, domain.RoleManager)))
	admin.PUT("/users/:id", userHandler.AdminUpdate,
		middleware.Guards(guard.RequireAnyRole(domain.RoleAdmin)))
	admin.PUT("/users/:id/activate", userHandler.AdminActivate,
		middleware.Guards(guard.RequireAnyRole(domain.RoleAdmin)))

	// --- Tenant routes: principal's tenant must match the path ---
	tenants := e.Group("/tenants", authenticate)
	tenants.GET("/:tenant_id/me", userHandler.TenantMe,
		middleware.Guards(guard.RequireTenantMatch()))

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Mongo, deps.Redis).Readiness)

	// --- API docs ---
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
