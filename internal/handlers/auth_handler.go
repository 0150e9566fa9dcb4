package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/auth"
	"github.com/classicdental/dental-scheduler/internal/config"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/infra/mailer"
	"github.com/classicdental/dental-scheduler/internal/infra/throttle"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/validators"
)

type AuthHandler struct {
	db       *gorm.DB
	config   *config.Config
	mail     mailer.Sender
	cooldown throttle.Cooldown
	audit    Auditor
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	mail mailer.Sender,
	cooldown throttle.Cooldown,
	audit Auditor,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		db:       db,
		config:   cfg,
		mail:     mail,
		cooldown: cooldown,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// --------- Session ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if username == "" {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return
	}
	if !models.IsValidRole(role) {
		httperr.BadRequest(c, "invalid_role", "Invalid role")
		return
	}
	if !passwordLongEnough(c, req.Password) {
		return
	}

	email, ok := h.checkEmail(c, req.Email)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	// Admin accounts can only be self-registered to bootstrap the clinic.
	if role == models.RoleAdmin {
		var admins int64
		if err := h.db.WithContext(ctx).Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&admins).Error; err != nil {
			httperr.Internal(c, "register_failed", err)
			return
		}
		if admins > 0 {
			httperr.Forbidden(c, "admin_exists", "Admin accounts are created by an admin")
			return
		}
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		httperr.Internal(c, "register_failed", err)
		return
	}
	if count > 0 {
		httperr.Conflict(c, "user_exists", "User exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Internal(c, "hash_failed", err)
		return
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Email:        email,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "user_exists", "User exists")
			return
		}
		httperr.Internal(c, "register_failed", err)
		return
	}

	writeAudit(h.audit, c, "user_created", "user", user.ID, gin.H{"role": role})

	c.JSON(http.StatusCreated, gin.H{"message": "Registered successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials")
		return
	}
	if err != nil {
		httperr.Internal(c, "login_failed", err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := auth.IssueToken(&user, h.config.JWTSecret, h.config.JWTTTL, h.now())
	if err != nil {
		httperr.Internal(c, "token_failed", err)
		return
	}

	httpresp.OK(c, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
		"email":    user.Email,
	})
}

// --------- Password reset ---------

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	email := validators.NormalizeEmail(req.Email)

	user, ok := h.userByEmail(c, email)
	if !ok {
		return
	}

	fresh, err := h.cooldown.Acquire(ctx, email)
	if err != nil {
		// A broken cooldown store must not lock users out.
		h.log.Warn("reset cooldown unavailable", zap.Error(err))
		fresh = true
	}
	if !fresh {
		httperr.TooManyRequests(c, "reset_cooldown", "Please wait before requesting another code")
		return
	}

	code, err := auth.NewResetCode()
	if err != nil {
		httperr.Internal(c, "reset_code_failed", err)
		return
	}

	expires := h.now().Add(h.config.ResetCodeTTL)
	if err := h.setResetCode(c, user.ID, auth.HashResetCode(code), &expires); err != nil {
		httperr.Internal(c, "reset_code_failed", err)
		return
	}

	if err := h.mail.SendResetCode(ctx, user.Email, code); err != nil {
		h.log.Error("reset mail failed", zap.Uint("user_id", user.ID), zap.Error(err))
		_ = h.setResetCode(c, user.ID, "", nil)
		_ = h.cooldown.Release(ctx, email)
		httperr.Internal(c, "mail_failed", err)
		return
	}

	writeAudit(h.audit, c, "password_reset_requested", "user", user.ID, nil)

	httpresp.Message(c, "Reset code sent to your email")
}

func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, ok := h.verifiedUser(c, req.Email, req.Code); !ok {
		return
	}

	httpresp.OK(c, gin.H{"valid": true})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.verifiedUser(c, req.Email, req.Code)
	if !ok {
		return
	}
	if !passwordLongEnough(c, req.NewPassword) {
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		httperr.Internal(c, "hash_failed", err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash":         hash,
			"reset_code_hash":       "",
			"reset_code_expires_at": nil,
			"reset_code_attempts":   0,
		}).Error; err != nil {
		httperr.Internal(c, "reset_failed", err)
		return
	}

	writeAudit(h.audit, c, "password_reset_completed", "user", user.ID, nil)

	httpresp.Message(c, "Password reset successfully")
}

// --------- Helpers ---------

func (h *AuthHandler) checkEmail(c *gin.Context, raw string) (string, bool) {
	email := validators.NormalizeEmail(raw)
	if email == "" {
		return "", true
	}
	if !validators.IsEmailSyntaxValid(email) {
		httperr.BadRequest(c, "invalid_email", "Invalid email")
		return "", false
	}
	if h.config.VerifyEmailDomain && !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "Email domain does not accept mail")
		return "", false
	}
	return email, true
}

func (h *AuthHandler) userByEmail(c *gin.Context, email string) (*models.User, bool) {
	if email == "" {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return nil, false
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", email).
		Order("id ASC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "user_not_found", "No account with that email")
		return nil, false
	}
	if err != nil {
		httperr.Internal(c, "lookup_failed", err)
		return nil, false
	}
	return &user, true
}

func (h *AuthHandler) verifiedUser(c *gin.Context, rawEmail, code string) (*models.User, bool) {
	user, ok := h.userByEmail(c, validators.NormalizeEmail(rawEmail))
	if !ok {
		return nil, false
	}

	err := auth.VerifyResetCode(user.ResetCodeHash, user.ResetCodeExpiresAt, strings.TrimSpace(code), h.now())
	switch {
	case errors.Is(err, auth.ErrResetCodeExpired):
		httperr.BadRequest(c, "code_expired", "Code expired")
		return nil, false
	case err != nil:
		if user.ResetCodeHash != "" {
			h.countFailedCode(c, user.ID)
		}
		httperr.BadRequest(c, "invalid_code", "Invalid code")
		return nil, false
	}
	return user, true
}

// countFailedCode clears the pending code once it has been missed
// auth.MaxResetAttempts times.
func (h *AuthHandler) countFailedCode(c *gin.Context, userID uint) {
	ctx := c.Request.Context()

	if err := h.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reset_code_attempts", gorm.Expr("reset_code_attempts + 1")).Error; err != nil {
		h.log.Warn("count reset attempt", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	res := h.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND reset_code_attempts >= ?", userID, auth.MaxResetAttempts).
		Updates(map[string]any{
			"reset_code_hash":       "",
			"reset_code_expires_at": nil,
			"reset_code_attempts":   0,
		})
	if res.Error != nil {
		h.log.Warn("burn reset code", zap.Uint("user_id", userID), zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		writeAudit(h.audit, c, "password_reset_locked", "user", userID, nil)
	}
}

func (h *AuthHandler) setResetCode(c *gin.Context, userID uint, hash string, expires *time.Time) error {
	return h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_code_hash":       hash,
			"reset_code_expires_at": expires,
			"reset_code_attempts":   0,
		}).Error
}

func passwordLongEnough(c *gin.Context, pw string) bool {
	if len(pw) < auth.MinPasswordLength {
		httperr.BadRequest(c, "weak_password", "Password must be at least 6 characters")
		return false
	}
	return true
}
