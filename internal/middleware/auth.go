package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/pkg/auth"
)

const (
	UserIDKey = "userID"
	TeamIDKey = "teamID"
	RoleKey   = "role"
	TokenKey  = "token"
)

// RevocationChecker сообщает, отозван ли токен (logout)
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware проверяет JWT токен из заголовка Authorization
func AuthMiddleware(jwtManager *auth.JWTManager, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			abort(c, apperror.Unauthorized("Missing or invalid token"))
			return
		}

		authenticate(c, token, jwtManager, revocations)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket: токен в ?token= или в заголовке
func WSAuthMiddleware(jwtManager *auth.JWTManager, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			abort(c, apperror.Unauthorized("Missing token"))
			return
		}

		authenticate(c, token, jwtManager, revocations)
	}
}

func authenticate(c *gin.Context, token string, jwtManager *auth.JWTManager, revocations RevocationChecker) {
	// Проверяем, не в черном списке ли токен
	revoked, err := revocations.IsRevoked(c.Request.Context(), token)
	if err != nil || revoked {
		abort(c, apperror.Unauthorized("Token is revoked"))
		return
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		abort(c, apperror.Unauthorized("Invalid token"))
		return
	}

	// Verify уже проверил, что оба id разбираются
	userID, _ := claims.UserID()
	teamID, _ := claims.Team()

	c.Set(UserIDKey, userID)
	c.Set(TeamIDKey, teamID)
	c.Set(RoleKey, models.Role(claims.Role))
	c.Set(TokenKey, token)
	c.Next()
}

// RequireRole пропускает только пользователей с заданной ролью
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != role {
			abort(c, apperror.Forbidden("Only team leaders can perform this action"))
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(UserIDKey).(uuid.UUID)
}

func CurrentTeamID(c *gin.Context) uuid.UUID {
	return c.MustGet(TeamIDKey).(uuid.UUID)
}

func CurrentRole(c *gin.Context) models.Role {
	role, _ := c.Get(RoleKey)
	r, _ := role.(models.Role)
	return r
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
