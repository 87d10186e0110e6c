package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/handler/http/middleware"
	"github.com/piyushaneja30/licensing-portal/internal/service"
)

// AuthHandler serves the signup/login/logout surface.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.Named("auth_handler")}
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Invalid request payload"})
		return
	}

	account, token, err := h.auth.Signup(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	h.logger.Info("account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("account_type", string(account.AccountType)),
	)
	c.JSON(http.StatusCreated, models.AuthResponse{User: account.ToResponse(), Token: token})
}

// Register handles POST /api/auth/register, the minimal legacy path.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Invalid request payload"})
		return
	}

	account, token, err := h.auth.Register(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.AuthResponse{User: account.ToResponse(), Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Email and password are required"})
		return
	}

	account, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{User: account.ToResponse(), Token: token})
}

// Logout handles POST /api/auth/logout. Invalidation is idempotent: a token
// that is already dead still gets a 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondMessage(c, http.StatusOK, "Logged out successfully")
}

// LogoutAll handles POST /api/auth/logout-all: revoke every session of the
// calling account.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	principal := middleware.Principal(c)
	revoked, err := h.auth.LogoutAll(c.Request.Context(), principal.ID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Logged out everywhere",
		"sessionsRevoked": revoked,
	})
}
