package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("missing user_id claim")
)

// Context keys for the authenticated identity
const (
	ContextKeyUserID   = "user_id"
	ContextKeyEmail    = "email"
	ContextKeyRole     = "role"
	ContextKeyHostelID = "hostel_id"
)

// Claims is the token payload issued at login and registration
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HostelID string `json:"hostel_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	Secret string
	// Issuer, when set, must match the token's iss claim
	Issuer string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
}

// GenerateToken signs an HS256 token for the given identity
func GenerateToken(secret, issuer string, ttl time.Duration, claims Claims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims
func ParseToken(tokenString, secret, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrMissingClaim
	}
	return claims, nil
}

// JWTMiddleware authenticates the bearer token and stores the identity on the context
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, response.ErrCodeMissingToken, "Access token required")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortAuth(c, response.ErrCodeInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := ParseToken(tokenString, config.Secret, config.Issuer)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			abortAuth(c, response.ErrCodeTokenExpired, "Access token has expired")
			return
		case err != nil:
			abortAuth(c, response.ErrCodeInvalidToken, "Invalid access token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyHostelID, claims.HostelID)

		ctx := logger.ContextWith(c.Request.Context(), logger.UserIDKey, claims.UserID)
		if claims.HostelID != "" {
			ctx = logger.ContextWith(ctx, logger.HostelIDKey, claims.HostelID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(code, message))
}

// RequireRole rejects requests whose role is not in roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("Insufficient permissions"))
	}
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) { return getString(c, ContextKeyUserID) }

// GetEmail extracts email from gin context
func GetEmail(c *gin.Context) (string, bool) { return getString(c, ContextKeyEmail) }

// GetRole extracts role from gin context
func GetRole(c *gin.Context) (string, bool) { return getString(c, ContextKeyRole) }

// GetHostelID extracts the caller's hostel ID from gin context. Empty for platform admins.
func GetHostelID(c *gin.Context) (string, bool) { return getString(c, ContextKeyHostelID) }
