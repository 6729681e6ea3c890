package middleware

import (
	"strings"

	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates JWT tokens for user authentication. The token is
// read from the access_token cookie first, then the Authorization header.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "Authentication required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := authService.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, "User not found")
			c.Abort()
			return
		}

		utils.SetUserInContext(c, user)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a valid token is present and
// carries on anonymously otherwise. Share link endpoints ride on this: the
// same URL serves both anonymous visitors and logged-in users eligible for
// promotion.
func OptionalAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		user, err := authService.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		utils.SetUserInContext(c, user)
		c.Set("token_claims", claims)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return ""
	}
	return tokenParts[1]
}
