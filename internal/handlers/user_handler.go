package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/auth"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// UserHandler is the admin-only account console.
type UserHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewUserHandler(db *gorm.DB, audit Auditor) *UserHandler {
	return &UserHandler{db: db, audit: audit}
}

type AdminResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})

	if role := strings.ToLower(strings.TrimSpace(c.Query("role"))); role != "" {
		q = q.Where("role = ?", role)
	}

	users := []models.User{}
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, gin.H{"users": users})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AdminResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if !passwordLongEnough(c, req.NewPassword) {
		return
	}

	var user models.User
	if !firstOr404(c, h.db, &user, id) {
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		httperr.Internal(c, "hash_failed", err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&user).Updates(map[string]any{
		"password_hash":         hash,
		"reset_code_hash":       "",
		"reset_code_expires_at": nil,
	}).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "password_reset_completed", "user", user.ID, gin.H{"by_admin": true})

	httpresp.Message(c, "Password reset successfully")
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.IsValidRole(role) {
		httperr.BadRequest(c, "invalid_role", "Invalid role")
		return
	}
	if id == middleware.CurrentUserID(c) && role != models.RoleAdmin {
		httperr.BadRequest(c, "self_demotion", "You cannot remove your own admin role")
		return
	}

	var user models.User
	if !firstOr404(c, h.db, &user, id) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&user).Update("role", role).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}
	user.Role = role

	writeAudit(h.audit, c, "user_updated", "user", user.ID, gin.H{"role": role})

	httpresp.OK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id == middleware.CurrentUserID(c) {
		httperr.BadRequest(c, "self_delete", "You cannot delete your own account")
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		httperr.Internal(c, "delete_failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "not_found", msgNotFound)
		return
	}

	writeAudit(h.audit, c, "user_deleted", "user", id, nil)

	httpresp.Deleted(c)
}
