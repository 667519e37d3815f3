package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/security"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// AuthzMetrics records the outcome of permission checks.
type AuthzMetrics interface {
	RecordAuthzDecision(permission string, allowed bool)
}

// RequireAuth validates the Authorization header and extracts user claims
func RequireAuth(verifier *security.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			case errors.Is(err, security.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set("claims", claims)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.UserID
		}

		c.Next()
	}
}

// RequirePermission gates a route behind a permission check. When scopeParam is
// non-empty the scope instance ID is read from that path parameter; otherwise
// the check runs against the global scope. The path ID is validated before it
// reaches storage, so a malformed one answers 400 rather than a decode error.
func RequirePermission(authz *usecase.AuthzService, metrics AuthzMetrics, permission string, scope domain.Scope, scopeParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetAuthenticatedUserID(c)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		var scopeID *string
		if scopeParam != "" {
			value := strings.TrimSpace(c.Param(scopeParam))
			if value == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					newErrorResponse(c, "missing scope identifier"))
				return
			}
			if _, err := uuid.Parse(value); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					newErrorResponse(c, "invalid scope identifier"))
				return
			}
			scopeID = &value
		}

		allowed, err := authz.HasPermission(c.Request.Context(), userID, permission, scope, scopeID)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrInvalidScope),
				errors.Is(err, usecase.ErrScopeIDRequired),
				errors.Is(err, usecase.ErrScopeIDForbidden):
				c.AbortWithStatusJSON(http.StatusBadRequest,
					newErrorResponse(c, "invalid authorization scope"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authorization check failed"))
			}
			return
		}

		if metrics != nil {
			metrics.RecordAuthzDecision(permission, allowed)
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}
