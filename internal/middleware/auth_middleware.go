package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// AdminKeyHeader carries the administrative API key
const AdminKeyHeader = "X-Admin-Key"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	cookieName   string
	adminKeyHash string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, cookieName, adminKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		cookieName:   cookieName,
		adminKeyHash: adminKeyHash,
	}
}

// tokenFromRequest reads the access token from the Authorization header, or the
// session cookie the web app sets when no header is present.
func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(header)
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", auth.ErrInvalidToken
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := m.tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Unauthorized"))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, "Unauthorized"))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeInvalidToken, "Unauthorized"))
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// AdminKey guards administrative routes with a key checked against its bcrypt hash
func (m *AuthMiddleware) AdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.VerifyAPIKey(m.adminKeyHash, c.GetHeader(AdminKeyHeader)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Unauthorized"))
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's id
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return id, nil
}
