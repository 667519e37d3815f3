package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/config"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/security"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/handlers"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/middleware"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Permissions   *usecase.PermissionService
	Roles         *usecase.RoleService
	Assignments   *usecase.AssignmentService
	Authz         *usecase.AuthzService
	Organizations *usecase.OrganizationService
	Owner         *usecase.OwnerService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config       *config.AppConfig
	Logger       *zap.Logger
	RateLimiter  *middleware.RateLimiter
	Services     ServiceSet
	Verifier     *security.TokenVerifier
	AuthzMetrics middleware.AuthzMetrics
	HTTPMetrics  *middleware.HTTPMetrics
	Database     DatabaseChecker
	Cache        CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Verifier)
	gate := func(permission string, scope domain.Scope, scopeParam string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Services.Authz, deps.AuthzMetrics, permission, scope, scopeParam)
	}

	checks := make(map[string]handlers.ReadinessCheck, 2)
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(authMiddleware)

	mutationLimit := buildMutationMiddlewares(deps)

	permissionHandler := handlers.NewPermissionHandler(deps.Services.Permissions)
	api.GET("/permissions", permissionHandler.List)

	roleHandler := handlers.NewRoleHandler(deps.Services.Roles, deps.Services.Authz)
	rolesGroup := api.Group("/roles")
	rolesGroup.POST("", withLimit(mutationLimit, gate(usecase.PermissionManageUserGlobalRoles, domain.ScopeGlobal, ""), roleHandler.CreateGlobalRole)...)
	// Delete and permission updates gate on the role's own scope, so the
	// permission check lives inside the handler.
	rolesGroup.DELETE("/:roleID", withLimit(mutationLimit, roleHandler.Delete)...)
	rolesGroup.PUT("/:roleID/permissions", withLimit(mutationLimit, roleHandler.UpdatePermissions)...)

	assignmentHandler := handlers.NewAssignmentHandler(deps.Services.Assignments)
	api.POST("/users/:userID/roles",
		withLimit(mutationLimit, gate(usecase.PermissionManageUserGlobalRoles, domain.ScopeGlobal, ""), assignmentHandler.AssignGlobalRole)...)

	organizationHandler := handlers.NewOrganizationHandler(deps.Services.Organizations, deps.Services.Owner)
	orgGroup := api.Group("/organizations")
	orgGroup.POST("", withLimit(mutationLimit, organizationHandler.Create)...)
	orgGroup.GET("/:orgID", organizationHandler.Get)
	orgGroup.POST("/:orgID/approve",
		withLimit(mutationLimit, gate(usecase.PermissionManageOrganizationRequests, domain.ScopeGlobal, ""), organizationHandler.Approve)...)
	orgGroup.POST("/:orgID/reject",
		withLimit(mutationLimit, gate(usecase.PermissionManageOrganizationRequests, domain.ScopeGlobal, ""), organizationHandler.Reject)...)
	orgGroup.POST("/:orgID/owner",
		withLimit(mutationLimit, gate(usecase.PermissionAssignOrganizationOwner, domain.ScopeGlobal, ""), organizationHandler.AssignOwner)...)
	orgGroup.GET("/:orgID/roles",
		gate(usecase.PermissionManageOrganizationRoles, domain.ScopeOrganization, "orgID"), roleHandler.ListOrganizationRoles)
	orgGroup.POST("/:orgID/roles",
		withLimit(mutationLimit, gate(usecase.PermissionManageOrganizationRoles, domain.ScopeOrganization, "orgID"), roleHandler.CreateOrganizationRole)...)
	orgGroup.POST("/:orgID/users/:userID/roles",
		withLimit(mutationLimit, gate(usecase.PermissionManageOrganizationRoles, domain.ScopeOrganization, "orgID"), assignmentHandler.AssignOrganizationRole)...)

	eventGroup := api.Group("/events")
	eventGroup.GET("/:eventID/roles",
		gate(usecase.PermissionManageEventRoles, domain.ScopeEvent, "eventID"), roleHandler.ListEventRoles)
	eventGroup.POST("/:eventID/roles",
		withLimit(mutationLimit, gate(usecase.PermissionManageEventRoles, domain.ScopeEvent, "eventID"), roleHandler.CreateEventRole)...)
	eventGroup.POST("/:eventID/users/:userID/roles",
		withLimit(mutationLimit, gate(usecase.PermissionManageEventRoles, domain.ScopeEvent, "eventID"), assignmentHandler.AssignEventRole)...)

	return r
}

func withLimit(limit []gin.HandlerFunc, rest ...gin.HandlerFunc) []gin.HandlerFunc {
	combined := make([]gin.HandlerFunc, 0, len(limit)+len(rest))
	combined = append(combined, limit...)
	combined = append(combined, rest...)
	return combined
}

func buildMutationMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.MutationMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "access_mutation",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.AuthenticatedUserIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
