package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ai-olympiad/qcm-service/internal/config"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

// AuthClaims are the claims issued by the olympiad auth service. Subject
// carries the user id.
type AuthClaims struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware authenticates requests against the shared-secret JWT
// issued by the auth service and mirrors the account into the local users
// table so reporting can join on it.
type JWTAuthMiddleware struct {
	config   config.JWTConfig
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewJWTAuthMiddleware(cfg config.JWTConfig, userRepo repositories.UserRepository, logger *slog.Logger) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		config:   cfg,
		userRepo: userRepo,
		logger:   logger,
	}
}

// AuthMiddleware validates the token from the auth cookie or the
// Authorization header and sets user_id / user_role in the Gin context.
func (am *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := am.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
			c.Abort()
			return
		}

		claims, err := am.parseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		role := models.UserRole(claims.Role)
		if !role.Valid() {
			role = models.RoleCandidate
		}

		am.syncUser(c.Request.Context(), claims, role)

		c.Set("user_id", claims.Subject)
		c.Set("user_role", role)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// RequireRoleMiddleware rejects requests whose role is not in the allowed
// set. Admins pass every check.
func (am *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "User role not found in context"})
			c.Abort()
			return
		}

		role, ok := value.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Invalid user role format"})
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
		c.Abort()
	}
}

func (am *JWTAuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(am.config.CookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func (am *JWTAuthMiddleware) parseToken(token string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(am.config.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// syncUser mirrors the authenticated account into the users table. Failures
// are logged, not fatal: the token is the source of truth for identity.
func (am *JWTAuthMiddleware) syncUser(ctx context.Context, claims *AuthClaims, role models.UserRole) {
	user := &models.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     role,
		IsActive: true,
	}
	if err := am.userRepo.Upsert(ctx, nil, user); err != nil {
		am.logger.Warn("Failed to sync user from token", "user_id", claims.Subject, "error", err)
	}
}

// GetUserIDFromContext extracts the authenticated user id from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID in context")
	}
	return id, nil
}

// GetUserRoleFromContext extracts the authenticated user role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}
	role, ok := value.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role in context")
	}
	return role, nil
}
