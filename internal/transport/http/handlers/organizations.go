package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/middleware"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// OrganizationHandler runs the organization request workflow over HTTP.
type OrganizationHandler struct {
	organizations *usecase.OrganizationService
	owner         *usecase.OwnerService
}

func NewOrganizationHandler(organizations *usecase.OrganizationService, owner *usecase.OwnerService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, owner: owner}
}

func organizationErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrInvalidID, Status: http.StatusBadRequest, Message: "invalid identifier"},
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		{Err: usecase.ErrOrganizationNotFound, Status: http.StatusNotFound, Message: "organization not found"},
		{Err: usecase.ErrOrganizationNotPending, Status: http.StatusConflict, Message: "organization request is not pending"},
		{Err: usecase.ErrOwnerAlreadyAssigned, Status: http.StatusConflict, Message: "organization already has an owner"},
		{Err: usecase.ErrAssignmentExists, Status: http.StatusConflict, Message: "user already has a role in this organization"},
	}
}

// Create registers a pending organization request.
func (h *OrganizationHandler) Create(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req OrganizationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid organization payload"))
		return
	}

	org, err := h.organizations.CreateOrganization(c.Request.Context(), actorID, usecase.CreateOrganizationInput{
		Name: req.Name,
	})
	if err != nil {
		RespondWithMappedError(c, err, organizationErrorCases(), http.StatusInternalServerError, "failed to create organization")
		return
	}

	c.JSON(http.StatusCreated, NewOrganizationPayload(*org))
}

// Get retrieves an organization by path ID.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.organizations.GetOrganization(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		RespondWithMappedError(c, err, organizationErrorCases(), http.StatusInternalServerError, "failed to load organization")
		return
	}

	c.JSON(http.StatusOK, NewOrganizationPayload(*org))
}

// Approve approves a pending request and bootstraps the nominated owner.
func (h *OrganizationHandler) Approve(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req OrganizationApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid approval payload"))
		return
	}

	org, err := h.organizations.ApproveOrganization(c.Request.Context(), actorID, c.Param("orgID"), req.OwnerUserID)
	if err != nil {
		RespondWithMappedError(c, err, organizationErrorCases(), http.StatusInternalServerError, "failed to approve organization")
		return
	}

	c.JSON(http.StatusOK, NewOrganizationPayload(*org))
}

// Reject rejects a pending request.
func (h *OrganizationHandler) Reject(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	org, err := h.organizations.RejectOrganization(c.Request.Context(), actorID, c.Param("orgID"))
	if err != nil {
		RespondWithMappedError(c, err, organizationErrorCases(), http.StatusInternalServerError, "failed to reject organization")
		return
	}

	c.JSON(http.StatusOK, NewOrganizationPayload(*org))
}

// AssignOwner runs the owner bootstrap workflow for an approved organization.
func (h *OrganizationHandler) AssignOwner(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req OwnerAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid owner payload"))
		return
	}

	org, err := h.owner.AssignOwner(c.Request.Context(), actorID, c.Param("orgID"), req.UserID)
	if err != nil {
		RespondWithMappedError(c, err, organizationErrorCases(), http.StatusInternalServerError, "failed to assign owner")
		return
	}

	c.JSON(http.StatusOK, NewOrganizationPayload(*org))
}
