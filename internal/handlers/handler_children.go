package handlers

import (
	"net/http"

	"github.com/SscSPs/family_bank/internal/auth"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/dto"

	"github.com/gin-gonic/gin"
)

// childHandler handles a parent's requests on its children.
type childHandler struct {
	createChild     auth.Guarded[dto.CreateChildRequest, *dto.UserResponse]
	listChildren    auth.Guarded[dto.Empty, *dto.ListChildrenResponse]
	getChildSummary auth.Guarded[dto.ChildSummaryRequest, *dto.ChildSummaryResponse]
	adjustBalance   auth.Guarded[dto.AdjustBalanceRequest, *dto.AdjustBalanceResponse]
}

// newChildHandler creates a new childHandler. Every operation requires the Parents group.
func newChildHandler(verifier portssvc.TokenVerifier, svc portssvc.ChildSvc) *childHandler {
	parents := auth.RequireAnyGroup(domain.GroupParents)
	return &childHandler{
		createChild:     auth.Guard[dto.CreateChildRequest, *dto.UserResponse](verifier, parents, svc.CreateChild),
		listChildren:    auth.Guard[dto.Empty, *dto.ListChildrenResponse](verifier, parents, svc.ListChildren),
		getChildSummary: auth.Guard[dto.ChildSummaryRequest, *dto.ChildSummaryResponse](verifier, parents, svc.GetChildSummary),
		adjustBalance:   auth.Guard[dto.AdjustBalanceRequest, *dto.AdjustBalanceResponse](verifier, parents, svc.AdjustBalance),
	}
}

// registerChildRoutes registers the child management routes.
func registerChildRoutes(rg *gin.RouterGroup, verifier portssvc.TokenVerifier, svc portssvc.ChildSvc) {
	h := newChildHandler(verifier, svc)

	children := rg.Group("/children")
	{
		children.GET("", h.list)
		children.POST("", h.create)
		children.GET("/:childId", h.summary)
	}
	rg.POST("/adjust-balance", h.adjust)
}

// create godoc
// @Summary Create a child account
// @Description Creates a child account owned by the calling parent, optionally with an opening balance
// @Tags children
// @Accept  json
// @Produce  json
// @Param   child body dto.CreateChildRequest true "Child details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a parent"
// @Failure 409 {object} dto.ErrorResponse "Child already exists"
// @Security BearerAuth
// @Router /children [post]
func (h *childHandler) create(c *gin.Context) {
	var req dto.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.createChild, req, http.StatusCreated)
}

// list godoc
// @Summary List children
// @Description Lists the calling parent's children with their balances
// @Tags children
// @Produce  json
// @Success 200 {object} dto.ListChildrenResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a parent"
// @Security BearerAuth
// @Router /children [get]
func (h *childHandler) list(c *gin.Context) {
	serve(c, h.listChildren, dto.Empty{}, http.StatusOK)
}

// summary godoc
// @Summary Get a child summary
// @Description Returns a child's profile and its most recent transactions
// @Tags children
// @Produce  json
// @Param   childId path string true "Child ID"
// @Success 200 {object} dto.ChildSummaryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the caller's child"
// @Failure 404 {object} dto.ErrorResponse "Child not found"
// @Security BearerAuth
// @Router /children/{childId} [get]
func (h *childHandler) summary(c *gin.Context) {
	var req dto.ChildSummaryRequest
	if err := c.ShouldBindUri(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.getChildSummary, req, http.StatusOK)
}

// adjust godoc
// @Summary Adjust a child's balance
// @Description Atomically applies a signed amount to a child's balance and records the transaction
// @Tags children
// @Accept  json
// @Produce  json
// @Param   adjustment body dto.AdjustBalanceRequest true "Adjustment"
// @Success 200 {object} dto.AdjustBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or insufficient funds"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the caller's child"
// @Failure 404 {object} dto.ErrorResponse "Child not found"
// @Failure 409 {object} dto.ErrorResponse "Balance changed concurrently; retry"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable; retry"
// @Security BearerAuth
// @Router /adjust-balance [post]
func (h *childHandler) adjust(c *gin.Context) {
	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.adjustBalance, req, http.StatusOK)
}
