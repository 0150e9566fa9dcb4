package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/auth"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/infra/imaging"
	"github.com/classicdental/dental-scheduler/internal/infra/storage"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/validators"
)

type ProfileHandler struct {
	db      *gorm.DB
	avatars storage.AvatarStore
	audit   Auditor
}

func NewProfileHandler(db *gorm.DB, avatars storage.AvatarStore, audit Auditor) *ProfileHandler {
	return &ProfileHandler{db: db, avatars: avatars, audit: audit}
}

type UpdateProfileRequest struct {
	Email           *string `json:"email,omitempty"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

func (h *ProfileHandler) currentUser(c *gin.Context) (*models.User, bool) {
	var user models.User
	err := h.db.WithContext(c.Request.Context()).First(&user, middleware.CurrentUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Token outlived its account.
		httperr.Unauthorized(c, "user_not_found", "Invalid token")
		return nil, false
	}
	if err != nil {
		httperr.Internal(c, "load_failed", err)
		return nil, false
	}
	return &user, true
}

func (h *ProfileHandler) Get(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{"user": user})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}

	if req.Email != nil {
		email := validators.NormalizeEmail(*req.Email)
		if email != "" && !validators.IsEmailSyntaxValid(email) {
			httperr.BadRequest(c, "invalid_email", "Invalid email")
			return
		}
		if email != user.Email {
			updates["email"] = email
		}
	}

	if req.NewPassword != "" {
		if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			httperr.Unauthorized(c, "wrong_password", "Current password is incorrect")
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
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		httperr.BadRequest(c, "no_changes", "No changes to save")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	if email, ok := updates["email"].(string); ok {
		user.Email = email
	}

	writeAudit(h.audit, c, "user_updated", "user", user.ID, gin.H{"self": true})

	httpresp.OK(c, gin.H{"message": "Profile updated", "user": user})
}

// UploadAvatar stores the multipart "avatar" file as a WebP thumbnail.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return
	}
	if fh.Size > imaging.MaxAvatarBytes {
		httperr.Write(c, http.StatusRequestEntityTooLarge, "file_too_large", "Avatar must be 5 MB or smaller")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Internal(c, "read_failed", err)
		return
	}
	defer f.Close()

	img, err := imaging.AvatarWebP(f)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		httperr.Write(c, http.StatusRequestEntityTooLarge, "file_too_large", "Avatar must be 5 MB or smaller")
		return
	case errors.Is(err, imaging.ErrUnsupported):
		httperr.BadRequest(c, "unsupported_image", "Avatar must be a JPEG, PNG, GIF or WebP image")
		return
	case err != nil:
		httperr.Internal(c, "image_failed", err)
		return
	}

	url, err := h.avatars.PutAvatar(c.Request.Context(), user.ID, img)
	if errors.Is(err, storage.ErrDisabled) {
		httperr.Unavailable(c, "storage_disabled", "Avatar uploads are not configured")
		return
	}
	if err != nil {
		httperr.Internal(c, "upload_failed", err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(user).Update("avatar_url", url).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "user_updated", "user", user.ID, gin.H{"avatar": true})

	httpresp.OK(c, gin.H{"avatarUrl": url})
}
