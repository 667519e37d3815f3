package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// PermissionHandler exposes the read-only permission catalog.
type PermissionHandler struct {
	permissions *usecase.PermissionService
}

func NewPermissionHandler(permissions *usecase.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// List returns the permission catalog, optionally filtered by the scope
// query parameter.
func (h *PermissionHandler) List(c *gin.Context) {
	if h.permissions == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "permission handler not fully configured"))
		return
	}

	var (
		result []domain.Permission
		err    error
	)

	if raw := strings.TrimSpace(c.Query("scope")); raw != "" {
		result, err = h.permissions.ListPermissionsByScope(c.Request.Context(), domain.Scope(raw))
	} else {
		result, err = h.permissions.ListPermissions(c.Request.Context())
	}

	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidScope, Status: http.StatusBadRequest, Message: "invalid scope"},
		}, http.StatusInternalServerError, "failed to list permissions")
		return
	}

	payload := make([]PermissionPayload, 0, len(result))
	for _, permission := range result {
		payload = append(payload, PermissionPayload{
			ID:          permission.ID,
			Name:        permission.Name,
			Description: permission.Description,
			Scope:       permission.Scope,
		})
	}

	c.JSON(http.StatusOK, PermissionListResponse{Permissions: payload})
}
