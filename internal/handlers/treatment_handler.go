package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/dto"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/models"
)

type TreatmentHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewTreatmentHandler(db *gorm.DB, audit Auditor) *TreatmentHandler {
	return &TreatmentHandler{db: db, audit: audit}
}

type TreatmentRequest struct {
	Name     string              `json:"name" binding:"required"`
	Price    dto.Number[float64] `json:"price"`
	Duration string              `json:"duration" binding:"required"`
	Type     string              `json:"type" binding:"required"`
	Rating   dto.Number[float64] `json:"rating"`
	Reviews  dto.Number[int]     `json:"reviews"`
}

func (h *TreatmentHandler) bind(c *gin.Context, t *models.Treatment) bool {
	var req TreatmentRequest
	if !bindJSON(c, &req) {
		return false
	}

	t.Name = strings.TrimSpace(req.Name)
	t.Duration = strings.TrimSpace(req.Duration)
	t.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	t.Price = req.Price.Value
	t.Rating = req.Rating.Ptr()
	t.Reviews = req.Reviews.Value

	if t.Name == "" || t.Duration == "" || t.Type == "" || !req.Price.Set {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return false
	}
	if t.Price < 0 {
		httperr.BadRequest(c, "invalid_price", "Invalid price")
		return false
	}
	if t.Type != models.TreatmentSingleVisit && t.Type != models.TreatmentMultipleVisit {
		httperr.BadRequest(c, "invalid_type", "Invalid treatment type")
		return false
	}
	if t.Rating != nil && (*t.Rating < 0 || *t.Rating > 5) {
		httperr.BadRequest(c, "invalid_rating", "Rating must be between 0 and 5")
		return false
	}
	if t.Reviews < 0 {
		httperr.BadRequest(c, "invalid_reviews", "Invalid reviews")
		return false
	}
	return true
}

func (h *TreatmentHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Treatment{})
	q = likeName(q, c.Query("query"))

	treatments := []models.Treatment{}
	if err := q.Order("id ASC").Find(&treatments).Error; err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, treatments)
}

func (h *TreatmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var treatment models.Treatment
	if !firstOr404(c, h.db, &treatment, id) {
		return
	}
	httpresp.OK(c, treatment)
}

func (h *TreatmentHandler) Create(c *gin.Context) {
	var treatment models.Treatment
	if !h.bind(c, &treatment) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&treatment).Error; err != nil {
		httperr.Internal(c, "create_failed", err)
		return
	}

	writeAudit(h.audit, c, "treatment_created", "treatment", treatment.ID, nil)

	httpresp.Created(c, treatment)
}

func (h *TreatmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var treatment models.Treatment
	if !firstOr404(c, h.db, &treatment, id) {
		return
	}
	if !h.bind(c, &treatment) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&treatment).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "treatment_updated", "treatment", treatment.ID, nil)

	httpresp.OK(c, treatment)
}

func (h *TreatmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Treatment{}, id)
	if res.Error != nil {
		httperr.Internal(c, "delete_failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "not_found", msgNotFound)
		return
	}

	writeAudit(h.audit, c, "treatment_deleted", "treatment", id, nil)

	httpresp.Deleted(c)
}

// treatmentByName matches the appointment's free-text service.
func treatmentByName(c *gin.Context, db *gorm.DB, name string) (*models.Treatment, bool) {
	var t models.Treatment
	err := db.WithContext(c.Request.Context()).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "treatment_not_found", "No treatment matches this service")
		return nil, false
	}
	if err != nil {
		httperr.Internal(c, "load_failed", err)
		return nil, false
	}
	return &t, true
}
