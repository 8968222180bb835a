package middleware

import (
	"errors"
	"net/http"
	"strings"

	appauth "github.com/acesped/portal/internal/app/auth"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware. cookieName may be empty, in
// which case only the Authorization header is consulted.
func NewAuthMiddleware(jwtService *auth.JWTService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		cookieName: cookieName,
	}
}

// tokenFrom returns the bearer token from the Authorization header or, when
// absent, the session cookie.
func (m *AuthMiddleware) tokenFrom(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(strings.TrimSpace(header))
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", nil
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := m.tokenFrom(c)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		if tokenString == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header or session cookie missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		principal, err := m.jwtService.ValidateAndExtractPrincipal(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequirePermission rejects principals whose role lacks perm. Students never
// hold staff permissions. Must run after JWTAuth.
func (m *AuthMiddleware) RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if principal.IsStudent() || !appauth.HasPermission(principal.Role, perm) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails(map[string]interface{}{"permission": perm})
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// StudentOnly rejects staff principals. Must run after JWTAuth.
func (m *AuthMiddleware) StudentOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok || !principal.IsStudent() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Only students can access this resource")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal JWTAuth stored on the context.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
