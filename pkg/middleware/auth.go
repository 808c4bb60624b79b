package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/UmarSidiki/taxibooking/pkg/common"
)

// Caller roles issued by the external identity service. This core only
// verifies and reads them; user management lives elsewhere.
const (
	RoleCustomer = "customer"
	RolePartner  = "partner"
	RoleOperator = "operator"
)

const (
	callerIDKey   = "caller_id"
	callerRoleKey = "caller_role"
)

// Auth validates the bearer token and stores the caller identity on the
// gin context.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			common.ErrorResponse(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		callerID, err := uuid.Parse(sub)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid token subject")
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set(callerIDKey, callerID)
		c.Set(callerRoleKey, role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetCallerRole(c)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// GetCallerID returns the authenticated caller's ID.
func GetCallerID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(callerIDKey)
	if !exists {
		return uuid.Nil, errors.New("caller not authenticated")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("caller id has unexpected type")
	}
	return id, nil
}

// GetCallerRole returns the authenticated caller's role.
func GetCallerRole(c *gin.Context) (string, error) {
	v, exists := c.Get(callerRoleKey)
	if !exists {
		return "", errors.New("caller not authenticated")
	}
	role, ok := v.(string)
	if !ok {
		return "", errors.New("caller role has unexpected type")
	}
	return role, nil
}
