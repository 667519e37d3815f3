package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/security"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "turfmania-identity"
)

func newTestVerifier(t *testing.T) *security.TokenVerifier {
	t.Helper()

	verifier, err := security.NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	return verifier
}

func signTestToken(t *testing.T, userID string, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type fakeAssignments struct {
	assignment *domain.RoleAssignment
	err        error
}

func (f *fakeAssignments) Create(context.Context, domain.RoleAssignment) error { return nil }

func (f *fakeAssignments) GetByUserAndScope(context.Context, string, *string) (*domain.RoleAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.assignment == nil {
		return nil, repository.ErrNotFound
	}
	return f.assignment, nil
}

func (f *fakeAssignments) DeleteByUserAndScope(context.Context, string, *string) (int, error) {
	return 0, nil
}

func (f *fakeAssignments) DeleteByRole(context.Context, string) (int, error) { return 0, nil }

func (f *fakeAssignments) ListByRole(context.Context, string) ([]domain.RoleAssignment, error) {
	return nil, nil
}

type fakePermissions struct {
	permissions []domain.Permission
}

func (f *fakePermissions) List(context.Context) ([]domain.Permission, error) { return nil, nil }

func (f *fakePermissions) ListByScope(context.Context, domain.Scope) ([]domain.Permission, error) {
	return nil, nil
}

func (f *fakePermissions) GetByNames(context.Context, domain.Scope, []string) ([]domain.Permission, error) {
	return nil, nil
}

func (f *fakePermissions) ListByRole(context.Context, string) ([]domain.Permission, error) {
	return f.permissions, nil
}

type fakeAuthzMetrics struct {
	permission string
	allowed    bool
	calls      int
}

func (f *fakeAuthzMetrics) RecordAuthzDecision(permission string, allowed bool) {
	f.permission = permission
	f.allowed = allowed
	f.calls++
}

func TestRequireAuth_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequireAuth(newTestVerifier(t)))
	router.GET("/", func(c *gin.Context) {
		userID, _ := GetAuthenticatedUserID(c)
		c.String(http.StatusOK, userID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", time.Hour))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "user-1" {
		t.Fatalf("expected authenticated user-1, got %q", rr.Body.String())
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequireAuth(newTestVerifier(t)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequireAuth(newTestVerifier(t)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequireAuth(newTestVerifier(t)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", -time.Minute))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func newPermissionRouter(t *testing.T, authz *usecase.AuthzService, metrics AuthzMetrics, permission string, scope domain.Scope, scopeParam, path string) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(RequireAuth(newTestVerifier(t)))
	router.GET(path, RequirePermission(authz, metrics, permission, scope, scopeParam), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequirePermission_Allowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orgID := uuid.NewString()
	assignments := &fakeAssignments{assignment: &domain.RoleAssignment{
		ID: "assignment-1", UserID: "user-1", RoleID: "role-1",
		Scope: domain.ScopeOrganization, ScopeID: &orgID,
	}}
	permissions := &fakePermissions{permissions: []domain.Permission{
		{ID: "perm-1", Name: "manage_organization_roles", Scope: domain.ScopeOrganization},
	}}
	metrics := &fakeAuthzMetrics{}

	authz := usecase.NewAuthzService(assignments, permissions, nil, nil)
	router := newPermissionRouter(t, authz, metrics, "manage_organization_roles", domain.ScopeOrganization, "orgID", "/organizations/:orgID/roles")

	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID+"/roles", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", time.Hour))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if metrics.calls != 1 || !metrics.allowed || metrics.permission != "manage_organization_roles" {
		t.Fatalf("unexpected metrics recording: %+v", metrics)
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	gin.SetMode(gin.TestMode)

	metrics := &fakeAuthzMetrics{}
	authz := usecase.NewAuthzService(&fakeAssignments{}, &fakePermissions{}, nil, nil)
	router := newPermissionRouter(t, authz, metrics, "manage_organization_roles", domain.ScopeOrganization, "orgID", "/organizations/:orgID/roles")

	req := httptest.NewRequest(http.MethodGet, "/organizations/"+uuid.NewString()+"/roles", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", time.Hour))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if metrics.calls != 1 || metrics.allowed {
		t.Fatalf("expected a recorded deny, got %+v", metrics)
	}
}

func TestRequirePermission_MalformedScopeID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Storage erroring on any lookup proves the malformed ID never
	// reaches it.
	assignments := &fakeAssignments{err: errors.New("malformed id reached storage")}
	metrics := &fakeAuthzMetrics{}

	authz := usecase.NewAuthzService(assignments, &fakePermissions{}, nil, nil)
	router := newPermissionRouter(t, authz, metrics, "manage_organization_roles", domain.ScopeOrganization, "orgID", "/organizations/:orgID/roles")

	req := httptest.NewRequest(http.MethodGet, "/organizations/not-a-uuid/roles", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", time.Hour))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed scope id, got %d", rr.Code)
	}
	if metrics.calls != 0 {
		t.Fatalf("expected no authz decision recorded, got %+v", metrics)
	}
}

func TestRequirePermission_GlobalScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assignments := &fakeAssignments{assignment: &domain.RoleAssignment{
		ID: "assignment-1", UserID: "user-1", RoleID: "role-1", Scope: domain.ScopeGlobal,
	}}
	permissions := &fakePermissions{permissions: []domain.Permission{
		{ID: "perm-1", Name: "manage_user_global_roles", Scope: domain.ScopeGlobal},
	}}

	authz := usecase.NewAuthzService(assignments, permissions, nil, nil)
	router := newPermissionRouter(t, authz, nil, "manage_user_global_roles", domain.ScopeGlobal, "", "/roles")

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", time.Hour))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermission_WithoutAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authz := usecase.NewAuthzService(&fakeAssignments{}, &fakePermissions{}, nil, nil)

	router := gin.New()
	router.GET("/roles", RequirePermission(authz, nil, "manage_user_global_roles", domain.ScopeGlobal, ""), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
