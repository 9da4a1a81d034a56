package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/calibrestore/billing/pkg/response"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotAdminToken = errors.New("token has no admin role")
)

// AdminClaims is the claim set required on tokens hitting /admin routes.
type AdminClaims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

// ParseAdminToken validates an HS256 token and requires the admin role.
func ParseAdminToken(tokenString, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != "admin" {
		return nil, ErrNotAdminToken
	}
	return claims, nil
}

// AdminAuthMiddleware guards admin routes with a bearer token.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if secret == "" || tokenString == "" || tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT(response.APIResponseCodeUnauthorized, "authorization required"))
			return
		}

		claims, err := ParseAdminToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT(response.APIResponseCodeUnauthorized, "invalid token"))
			return
		}

		c.Set("adminSubject", claims.Subject)
		c.Next()
	}
}
