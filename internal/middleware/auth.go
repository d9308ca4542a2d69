package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey   = "user_id"
	userTypeKey = "user_type"
)

// Auth validates an HS256 bearer token and stores the caller's user id in
// the gin context. The id is read from the user_id claim, falling back to sub.
func Auth(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token claims."})
			return
		}

		c.Set(userIDKey, userID)
		if userType, ok := claims[userTypeKey].(string); ok {
			c.Set(userTypeKey, userType)
		}
		c.Next()
	}
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims[userIDKey]
	if !ok {
		raw, ok = claims["sub"]
	}
	if !ok {
		return 0, errors.New("no user id claim")
	}

	var id int64
	switch v := raw.(type) {
	case float64:
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("user id claim: %w", err)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("user id claim has type %T", raw)
	}
	if id <= 0 {
		return 0, errors.New("user id claim must be positive")
	}
	return id, nil
}

// UserID returns the identity stored by Auth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequireRole lets the request through only when Auth found a user_type
// claim matching one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType := c.GetString(userTypeKey)
		if !slices.Contains(roles, userType) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "This action is unauthorized."})
			return
		}
		c.Next()
	}
}
