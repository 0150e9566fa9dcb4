package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/dto"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/validators"
)

type PatientHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewPatientHandler(db *gorm.DB, audit Auditor) *PatientHandler {
	return &PatientHandler{db: db, audit: audit}
}

// --------- Requests ---------

type PatientRequest struct {
	Name           string          `json:"name" binding:"required"`
	Age            dto.Number[int] `json:"age"`
	Gender         string          `json:"gender"`
	Contact        string          `json:"contact" binding:"required"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	MedicalHistory string          `json:"medicalHistory"`
}

func (r *PatientRequest) apply(p *models.Patient) {
	p.Name = strings.TrimSpace(r.Name)
	p.Age = r.Age.Ptr()
	p.Gender = strings.TrimSpace(r.Gender)
	p.Contact = strings.TrimSpace(r.Contact)
	p.Email = validators.NormalizeEmail(r.Email)
	p.Address = strings.TrimSpace(r.Address)
	p.MedicalHistory = r.MedicalHistory
}

func (h *PatientHandler) bind(c *gin.Context, p *models.Patient) bool {
	var req PatientRequest
	if !bindJSON(c, &req) {
		return false
	}
	req.apply(p)

	if p.Name == "" || p.Contact == "" {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return false
	}
	if p.Age != nil && *p.Age < 0 {
		httperr.BadRequest(c, "invalid_age", "Invalid age")
		return false
	}
	if p.Email != "" && !validators.IsEmailSyntaxValid(p.Email) {
		httperr.BadRequest(c, "invalid_email", "Invalid email")
		return false
	}
	return true
}

// --------- Handlers ---------

func (h *PatientHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Patient{})
	q = likeName(q, c.Query("query"))

	patients := []models.Patient{}
	if err := q.Order("id ASC").Find(&patients).Error; err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patient models.Patient
	if !firstOr404(c, h.db, &patient, id) {
		return
	}
	httpresp.OK(c, patient)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var patient models.Patient
	if !h.bind(c, &patient) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&patient).Error; err != nil {
		httperr.Internal(c, "create_failed", err)
		return
	}

	writeAudit(h.audit, c, "patient_created", "patient", patient.ID, nil)

	httpresp.Created(c, patient)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patient models.Patient
	if !firstOr404(c, h.db, &patient, id) {
		return
	}
	if !h.bind(c, &patient) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&patient).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "patient_updated", "patient", patient.ID, nil)

	httpresp.OK(c, patient)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if !deleteUnreferenced(c, h.db, &models.Patient{}, id, "patient_id") {
		return
	}

	writeAudit(h.audit, c, "patient_deleted", "patient", id, nil)

	httpresp.Deleted(c)
}

// deleteUnreferenced removes the row unless an appointment still points at
// it through column.
func deleteUnreferenced(c *gin.Context, db *gorm.DB, model any, id uint, column string) bool {
	tx := db.WithContext(c.Request.Context())

	var refs int64
	if err := tx.Model(&models.Appointment{}).Where(column+" = ?", id).Count(&refs).Error; err != nil {
		httperr.Internal(c, "delete_failed", err)
		return false
	}
	if refs > 0 {
		httperr.Conflict(c, "has_appointments", "Record still has appointments")
		return false
	}

	res := tx.Delete(model, id)
	if res.Error != nil {
		httperr.Internal(c, "delete_failed", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "not_found", msgNotFound)
		return false
	}
	return true
}
