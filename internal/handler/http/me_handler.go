package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/handler/http/middleware"
	"github.com/piyushaneja30/licensing-portal/internal/service"
)

// MeHandler serves the authenticated account's own resources.
type MeHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewMeHandler(auth *service.AuthService, logger *zap.Logger) *MeHandler {
	return &MeHandler{auth: auth, logger: logger.Named("me_handler")}
}

// Me handles GET /api/auth/me.
func (h *MeHandler) Me(c *gin.Context) {
	principal := middleware.Principal(c)
	account, err := h.auth.CurrentAccount(c.Request.Context(), principal)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account.ToResponse())
}

// UpdateProfile handles PUT /api/auth/profile with partial-field semantics.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Invalid request payload"})
		return
	}

	principal := middleware.Principal(c)
	account, err := h.auth.UpdateProfile(c.Request.Context(), principal.ID, &req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account.ToResponse())
}

// ChangePassword handles POST /api/auth/change-password. A successful change
// revokes every session of the account, including the one making this call.
func (h *MeHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Current and new password are required"})
		return
	}

	principal := middleware.Principal(c)
	err := h.auth.ChangePassword(c.Request.Context(), principal.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondMessage(c, http.StatusOK, "Password changed; please log in again")
}
