package api

import (
	"errors"
	"net/http"

	"dairyflow/internal/repository"
	"dairyflow/internal/service"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success":    true,
		"data":       data,
		"statusCode": status,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, v1.Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}

// failErr maps a service error onto the backend's status codes. Unknown
// errors are logged and reported as 500 without leaking details.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrSessionExpired), errors.Is(err, service.ErrTokenInvalid):
		fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, service.ErrWrongPassword):
		fail(c, http.StatusBadRequest, "Current password is incorrect")
	case errors.Is(err, service.ErrInvalidCompanyCode):
		fail(c, http.StatusBadRequest, "Invalid company code")
	case errors.Is(err, service.ErrInvalidPeriod):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrEmailTaken):
		fail(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, repository.ErrRecordNotFound), errors.Is(err, repository.ErrUserNotFound):
		fail(c, http.StatusNotFound, "Resource not found")
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// operator returns the identity set by the JWT middleware.
func operator(c *gin.Context) *service.OperatorInfo {
	op := service.GetOperatorInfo(c.Request.Context())
	if op == nil {
		fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	return op
}
