package middleware

import (
	"net/http"

	"dairyflow/internal/service"
	"dairyflow/pkg/constraints"

	"github.com/gin-gonic/gin"
)

// RequireUserType admits only operators of the given type. It must run after
// JWTMiddleware.
func RequireUserType(t constraints.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		op := service.GetOperatorInfo(c.Request.Context())
		if op == nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if op.UserType != t {
			abort(c, http.StatusForbidden, "Only "+string(t)+" accounts can do this")
			return
		}
		c.Next()
	}
}
