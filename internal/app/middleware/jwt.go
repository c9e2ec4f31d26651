package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTMiddleware
const (
	ContextClaims  = "claims"
	ContextSubject = "subject"
	ContextRoles   = "roles"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// Token validation failures
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

func unauthorized(c *gin.Context, message string) {
	abortWith(c, apperrors.Unauthorized(message))
}

func abortWith(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.HTTPStatus, apperrors.NewErrorResponse(apiErr))
}

// JWTMiddleware creates a bearer token authentication middleware
func JWTMiddleware(config JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := ValidateToken(parts[1], config.Secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				abortWith(c, apperrors.TokenExpired())
			} else {
				abortWith(c, apperrors.TokenInvalid(err.Error()))
			}
			return
		}

		if config.Issuer != "" && claims.Issuer != config.Issuer {
			abortWith(c, apperrors.TokenInvalid("invalid token issuer"))
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRoles, claims.Roles)

		c.Next()
	}
}

// GenerateToken creates a new signed token for subject
func GenerateToken(config JWTConfig, subject string, roles []string) (string, error) {
	if config.Secret == "" {
		return "", errors.New("jwt secret is required")
	}
	now := time.Now()
	claims := JWTClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    config.Issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}

	return claims, nil
}

// RequireRole creates a middleware that checks for any of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apperrors.NewErrorResponse(apperrors.Forbidden("no roles found in token")))
			return
		}

		for _, required := range roles {
			for _, have := range claims.Roles {
				if have == required {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, apperrors.NewErrorResponse(apperrors.Forbidden("insufficient permissions")))
	}
}

// GetSubject extracts the token subject from context
func GetSubject(c *gin.Context) string {
	if subject, exists := c.Get(ContextSubject); exists {
		if s, ok := subject.(string); ok {
			return s
		}
	}
	return ""
}

// GetClaims extracts JWT claims from context
func GetClaims(c *gin.Context) *JWTClaims {
	if claims, exists := c.Get(ContextClaims); exists {
		if jwtClaims, ok := claims.(*JWTClaims); ok {
			return jwtClaims
		}
	}
	return nil
}
