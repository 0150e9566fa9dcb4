package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/dto"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/models"
	"github.com/classicdental/dental-scheduler/internal/timezone"
)

type ScheduleHandler struct {
	db    *gorm.DB
	audit Auditor
}

func NewScheduleHandler(db *gorm.DB, audit Auditor) *ScheduleHandler {
	return &ScheduleHandler{db: db, audit: audit}
}

// bind fills s from the body. Dates and times are compared as strings,
// which is safe for the fixed-width layouts.
func (h *ScheduleHandler) bind(c *gin.Context, s *models.Schedule) bool {
	var req dto.ScheduleRequest
	if !bindJSON(c, &req) {
		return false
	}

	s.Title = strings.TrimSpace(req.Title)
	s.Date = strings.TrimSpace(req.Date)
	s.EndDate = strings.TrimSpace(req.EndDate)
	s.StartTime = strings.TrimSpace(req.StartTime)
	s.EndTime = strings.TrimSpace(req.EndTime)
	s.Type = strings.ToLower(strings.TrimSpace(req.Type))
	s.Procedure = strings.TrimSpace(req.Procedure)
	s.Description = req.Description
	s.DentistID = req.DentistID.Ptr()
	s.PatientID = req.PatientID.Ptr()

	if s.Type == "" {
		s.Type = models.ScheduleGeneral
	}

	switch {
	case s.Title == "" || s.Date == "":
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return false
	case !models.IsValidScheduleType(s.Type):
		httperr.BadRequest(c, "invalid_type", "Invalid schedule type")
		return false
	case !timezone.IsDate(s.Date) || (s.EndDate != "" && !timezone.IsDate(s.EndDate)):
		httperr.BadRequest(c, "invalid_date", "Dates must be YYYY-MM-DD")
		return false
	case s.EndDate != "" && s.EndDate < s.Date:
		httperr.BadRequest(c, "invalid_range", "End date cannot be before start date")
		return false
	case (s.StartTime != "" && !timezone.IsClock(s.StartTime)) || (s.EndTime != "" && !timezone.IsClock(s.EndTime)):
		httperr.BadRequest(c, "invalid_time", "Times must be HH:MM")
		return false
	case s.StartTime != "" && s.EndTime != "" && s.EndTime <= s.StartTime:
		httperr.BadRequest(c, "invalid_range", "End time must be after start time")
		return false
	}

	if !h.refExists(c, &models.Dentist{}, s.DentistID, "dentist_not_found", "Dentist not found") {
		return false
	}
	return h.refExists(c, &models.Patient{}, s.PatientID, "patient_not_found", "Patient not found")
}

func (h *ScheduleHandler) refExists(c *gin.Context, model any, id *uint, code, msg string) bool {
	if id == nil {
		return true
	}

	var n int64
	if err := h.db.WithContext(c.Request.Context()).Model(model).Where("id = ?", *id).Count(&n).Error; err != nil {
		httperr.Internal(c, "lookup_failed", err)
		return false
	}
	if n == 0 {
		httperr.BadRequest(c, code, msg)
		return false
	}
	return true
}

// List supports from/to (entries overlapping the range) and dentist.
func (h *ScheduleHandler) List(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	for _, d := range []string{from, to} {
		if d != "" && !timezone.IsDate(d) {
			httperr.BadRequest(c, "invalid_filter", "Dates must be YYYY-MM-DD")
			return
		}
	}

	dentistID, ok := queryID(c, "dentist")
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Schedule{})
	if from != "" {
		q = q.Where("COALESCE(NULLIF(end_date, ''), start_date) >= ?", from)
	}
	if to != "" {
		q = q.Where("start_date <= ?", to)
	}
	if dentistID != 0 {
		q = q.Where("dentist_id = ?", dentistID)
	}

	schedules := []models.Schedule{}
	if err := q.Order("start_date ASC, start_time ASC, id ASC").Find(&schedules).Error; err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, schedules)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var s models.Schedule
	if !firstOr404(c, h.db, &s, id) {
		return
	}
	httpresp.OK(c, s)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var s models.Schedule
	if !h.bind(c, &s) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		httperr.Internal(c, "create_failed", err)
		return
	}

	writeAudit(h.audit, c, "schedule_created", "schedule", s.ID, gin.H{"type": s.Type})

	httpresp.Created(c, s)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var s models.Schedule
	if !firstOr404(c, h.db, &s, id) {
		return
	}
	if !h.bind(c, &s) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&s).Error; err != nil {
		httperr.Internal(c, "update_failed", err)
		return
	}

	writeAudit(h.audit, c, "schedule_updated", "schedule", s.ID, nil)

	httpresp.OK(c, s)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Schedule{}, id)
	if res.Error != nil {
		httperr.Internal(c, "delete_failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "not_found", msgNotFound)
		return
	}

	writeAudit(h.audit, c, "schedule_deleted", "schedule", id, nil)

	httpresp.Deleted(c)
}
