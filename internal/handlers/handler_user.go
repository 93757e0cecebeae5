package handlers

import (
	"net/http"

	"github.com/SscSPs/family_bank/internal/auth"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/dto"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests on the caller's profile.
type userHandler struct {
	getProfile     auth.Guarded[dto.Empty, *dto.UserResponse]
	updateProfile  auth.Guarded[dto.UpdateUserRequest, *dto.UserResponse]
	registerParent auth.Guarded[dto.RegisterParentRequest, *dto.UserResponse]
}

// newUserHandler creates a new userHandler.
func newUserHandler(verifier portssvc.TokenVerifier, svc portssvc.ProfileSvc) *userHandler {
	return &userHandler{
		getProfile:     auth.Guard[dto.Empty, *dto.UserResponse](verifier, auth.AnyAuthenticated(), svc.GetProfile),
		updateProfile:  auth.Guard[dto.UpdateUserRequest, *dto.UserResponse](verifier, auth.AnyAuthenticated(), svc.UpdateProfile),
		registerParent: auth.Guard[dto.RegisterParentRequest, *dto.UserResponse](verifier, auth.RequireAnyGroup(domain.GroupParents), svc.RegisterParent),
	}
}

// registerUserRoutes registers all profile routes.
func registerUserRoutes(rg *gin.RouterGroup, verifier portssvc.TokenVerifier, svc portssvc.ProfileSvc) {
	h := newUserHandler(verifier, svc)

	user := rg.Group("/user")
	{
		user.GET("", h.get)
		user.POST("", h.update)
		user.POST("/register", h.register)
	}
}

// get godoc
// @Summary Get the caller's profile
// @Description Returns the profile of the authenticated user, including the balance
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Security BearerAuth
// @Router /user [get]
func (h *userHandler) get(c *gin.Context) {
	serve(c, h.getProfile, dto.Empty{}, http.StatusOK)
}

// update godoc
// @Summary Update a profile
// @Description Updates the caller's name, or a child's name or interest rate when the caller is its parent
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /user [post]
func (h *userHandler) update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.updateProfile, req, http.StatusOK)
}

// register godoc
// @Summary Register as a parent
// @Description Creates the parent profile of the authenticated caller
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.RegisterParentRequest true "Parent details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not in the Parents group"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Security BearerAuth
// @Router /user/register [post]
func (h *userHandler) register(c *gin.Context) {
	var req dto.RegisterParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.registerParent, req, http.StatusCreated)
}
