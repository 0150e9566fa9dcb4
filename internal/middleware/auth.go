package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/auth"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextUserRole = "userRole"
)

// AccountLookup loads the account behind a token. A nil user means the
// account no longer exists.
type AccountLookup func(ctx context.Context, userID uint) (*models.User, error)

func GormAccounts(db *gorm.DB) AccountLookup {
	return func(ctx context.Context, userID uint) (*models.User, error) {
		var user models.User
		res := db.WithContext(ctx).
			Select("id", "username", "role").
			Where("id = ?", userID).
			Limit(1).
			Find(&user)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
		return &user, nil
	}
}

// AuthMiddleware verifies the bearer token and then reloads the account,
// so role changes and deletions apply to tokens already issued.
func AuthMiddleware(secret string, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "No token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Invalid token")
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Invalid token")
			return
		}

		// ParseToken already validated the subject.
		userID, _ := claims.UserID()

		user, err := accounts(c.Request.Context(), userID)
		if err != nil {
			httperr.Abort(c, http.StatusInternalServerError, "account_lookup_failed", err.Error())
			return
		}
		if user == nil {
			httperr.Abort(c, http.StatusUnauthorized, "account_not_found", "Invalid token")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Set(ContextUserRole, user.Role)

		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(ContextUserRole)] {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
