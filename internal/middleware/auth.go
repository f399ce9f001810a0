package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/pkg/response"
)

const userIDKey = "userID"

// IssueToken signs a bearer token for userID that expires after ttl
func IssueToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates a bearer token and returns the user it was issued for
func ParseToken(secret, tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject: %w", err)
	}
	return userID, nil
}

// Auth requires a valid bearer token and stores its user in the context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Missing bearer token", nil)
			c.Abort()
			return
		}

		userID, err := ParseToken(secret, tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid bearer token", err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// ErrNoUser is returned when a handler runs without Auth in front of it
var ErrNoUser = errors.New("no authenticated user")

// UserID returns the authenticated user of the request
func UserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	return id, nil
}
