package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates a session token from the Authorization header or,
// for websocket clients that cannot set headers, the `token` query parameter.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token no encontrado"))
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token inválido o expirado"))
			c.Abort()
			return
		}

		c.Set("subject_id", claims.SubjectID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one session role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("no autorizado"))
			c.Abort()
			return
		}
		if current != role {
			utils.RespondError(c, http.StatusForbidden, errors.New("acceso restringido"))
			c.Abort()
			return
		}
		c.Next()
	}
}
