package middleware

import (
	"errors"
	"net/http"
	"strings"

	"dairyflow/internal/service"
	"dairyflow/pkg/constraints"

	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves an access token to the operator it was issued to.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*service.OperatorInfo, error)
}

func JWTMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constraints.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(authHeader, constraints.BearerPrefix)
		if !ok || tokenString == "" {
			abort(c, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		op, err := verifier.VerifyAccessToken(tokenString)
		if err != nil {
			msg := "Invalid access token"
			if errors.Is(err, service.ErrSessionExpired) {
				msg = "Access token expired"
			}
			abort(c, http.StatusUnauthorized, msg)
			return
		}

		ctx := service.WithOperator(c.Request.Context(), op)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", op.UserID)

		c.Next()
	}
}
