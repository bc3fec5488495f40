package middleware

import (
	v1 "dairyflow/pkg/api/v1"

	"github.com/gin-gonic/gin"
)

// abort stops the chain with the backend's error envelope.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, v1.Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}
