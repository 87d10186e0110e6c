package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
)

// ErrorBody is the error envelope of the portal API: a message, plus a
// field -> message map for validation failures.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// RespondError maps a domain error to its HTTP shape. Internal details are
// logged, never sent to the client.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	if ve, ok := domainErrors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: ve.Message, Errors: ve.Fields})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrEmailExists):
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Email already registered"})
	case errors.Is(err, domainErrors.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Password is not strong enough"})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorBody{Message: "Invalid email or password"})
	case errors.Is(err, domainErrors.ErrMissingToken):
		c.JSON(http.StatusUnauthorized, ErrorBody{Message: "Authentication required"})
	case errors.Is(err, domainErrors.ErrInvalidToken), errors.Is(err, domainErrors.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, ErrorBody{Message: "Invalid token"})
	case errors.Is(err, domainErrors.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, ErrorBody{Message: "Session expired or invalid"})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorBody{Message: "Admin access required"})
	case errors.Is(err, domainErrors.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, ErrorBody{Message: "User not found"})
	default:
		logger.Error("unhandled error reached HTTP boundary",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, ErrorBody{Message: "Internal server error"})
	}
}

// RespondMessage sends a bare message body.
func RespondMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
