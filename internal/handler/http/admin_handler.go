package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/service"
)

// AdminHandler serves the admin-only account surface.
type AdminHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAdminHandler(auth *service.AuthService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, logger: logger.Named("admin_handler")}
}

// ListUsers handles GET /api/auth/users/all. Password hashes never leave the
// service; only the response projection is serialized.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	accounts, err := h.auth.ListAccounts(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	responses := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, account.ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}
