package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/validators"
)

type DentistHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewDentistHandler(db *gorm.DB, audit Auditor) *DentistHandler {
	return &DentistHandler{db: db, audit: audit}
}

type DentistRequest struct {
	Name           string   `json:"name" binding:"required"`
	Specialization string   `json:"specialization" binding:"required"`
	Contact        string   `json:"contact"`
	Email          string   `json:"email"`
	Schedule       string   `json:"schedule"`
	License        string   `json:"license"`
	Available      []string `json:"available"`
}

func (h *DentistHandler) bind(c *gin.Context, d *models.Dentist) bool {
	var req DentistRequest
	if !bindJSON(c, &req) {
		return false
	}

	d.Name = strings.TrimSpace(req.Name)
	d.Specialization = strings.TrimSpace(req.Specialization)
	d.Contact = strings.TrimSpace(req.Contact)
	d.Email = validators.NormalizeEmail(req.Email)
	d.Schedule = strings.TrimSpace(req.Schedule)
	d.License = strings.TrimSpace(req.License)
	d.Available = req.Available
	if d.Available == nil {
		d.Available = []string{}
	}

	if d.Name == "" || d.Specialization == "" {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return false
	}
	if d.Email != "" && !validators.IsEmailSyntaxValid(d.Email) {
		httperr.BadRequest(c, "invalid_email", "Invalid email")
		return false
	}
	return true
}

func (h *DentistHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Dentist{})
	q = likeName(q, c.Query("query"))

	dentists := []models.Dentist{}
	if err := q.Order("id ASC").Find(&dentists).Error; err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, dentists)
}

func (h *DentistHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dentist models.Dentist
	if !firstOr404(c, h.db, &dentist, id) {
		return
	}
	httpresp.OK(c, dentist)
}

func (h *DentistHandler) Create(c *gin.Context) {
	var dentist models.Dentist
	if !h.bind(c, &dentist) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&dentist).Error; err != nil {
		httperr.Internal(c, "create_failed", err)
		return
	}

	writeAudit(h.audit, c, "dentist_created", "dentist", dentist.ID, nil)

	httpresp.Created(c, dentist)
}

func (h *DentistHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dentist models.Dentist
	if !firstOr404(c, h.db, &dentist, id) {
		return
	}
	if !h.bind(c, &dentist) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&dentist).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "dentist_updated", "dentist", dentist.ID, nil)

	httpresp.OK(c, dentist)
}

func (h *DentistHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if !deleteUnreferenced(c, h.db, &models.Dentist{}, id, "dentist_id") {
		return
	}

	writeAudit(h.audit, c, "dentist_deleted", "dentist", id, nil)

	httpresp.Deleted(c)
}
