package middleware

import (
	"net/http"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the JWT carries the required role. Superadmins
// pass every role check.
func RequireRole(role model.Role) gin.HandlerFunc {
	return RequireAnyRole(role)
}

// RequireAnyRole checks that the JWT carries at least one of the given roles.
func RequireAnyRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Role == string(model.RoleSuperAdmin) {
			c.Next()
			return
		}

		for _, role := range roles {
			if claims.Role == string(role) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrRoleDenied)
	}
}

// RequireStaff allows teachers, principals and superadmins.
func RequireStaff() gin.HandlerFunc {
	return RequireAnyRole(model.StaffRoles...)
}
