package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// BearerIdentity resolves the caller's identity for per-user scoping.
//
// When an Authorization: Bearer token is present it must be a valid HS256
// JWT signed with secret; the "sub" claim becomes the user identifier.
// Requests that carry an invalid or malformed token are rejected with 401.
// Requests without a token fall through anonymously and downstream code
// applies the demo-user fallback, which keeps local development usable
// without minting tokens.
func BearerIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
			c.Next()
			return
		}
		tokenStr := strings.TrimPrefix(raw, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid bearer token",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid token claims",
			})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "token missing subject",
			})
			return
		}

		c.Set("userID", sub)
		c.Next()
	}
}
