package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the verified identity of the caller, resolved once per request
// and passed explicitly into business logic.
type Principal struct {
	UserID   primitive.ObjectID
	Username string
	Role     string
}

const principalKey = "principal"

// UserAuth rejects requests without a valid bearer token.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// AdminAuth additionally requires the ADMIN role.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if principal.Role != "ADMIN" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// OptionalAuth resolves a principal when a valid token is present and lets
// anonymous requests through. Endpoints that degrade for anonymous callers
// (order history) use this instead of UserAuth.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c.GetHeader("Authorization"), secret)
		if err == nil && principal != nil {
			c.Set(principalKey, *principal)
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved by the auth middleware for
// this request, if any.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

func principalFromHeader(header, secret string) (*Principal, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(sub))
	if err != nil {
		return nil, errors.New("invalid sub claim")
	}

	username, _ := claims["username"].(string)
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username claim missing")
	}

	role, _ := claims["role"].(string)

	return &Principal{
		UserID:   userID,
		Username: username,
		Role:     role,
	}, nil
}
