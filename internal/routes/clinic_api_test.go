package routes

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classicdental/dental-scheduler/internal/models"
)

func seedClinic(t *testing.T, api *testAPI, token string) (patientID, dentistID uint) {
	t.Helper()
	patientID = api.create(token, "/api/patients", gin.H{"name": "Maria Silva", "contact": "555-0100", "age": "42"})
	dentistID = api.create(token, "/api/dentists", gin.H{"name": "Dr. Costa", "specialization": "Orthodontics"})
	return patientID, dentistID
}

// ======================================================
// PATIENTS / DENTISTS / TREATMENTS
// ======================================================

func TestPatientsCRUD(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("ana", "staff", "")

	w := api.do(http.MethodPost, "/api/patients", token, gin.H{"name": "No Contact"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, msg := errorOf(t, w)
	assert.Equal(t, "Missing fields", msg)

	id := api.create(token, "/api/patients", gin.H{"name": "Maria Silva", "contact": "555-0100", "age": "42", "medicalHistory": "penicillin allergy"})
	api.create(token, "/api/patients", gin.H{"name": "João Souza", "contact": "555-0101", "age": ""})

	w = api.do(http.MethodGet, "/api/patients?query=maria", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Patient
	decode(t, w, &list)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Age)
	assert.Equal(t, 42, *list[0].Age)
	assert.Equal(t, "penicillin allergy", list[0].MedicalHistory)

	w = api.do(http.MethodPut, pathf("/api/patients/%d", id), token, gin.H{"name": "Maria S. Silva", "contact": "555-0199"})
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Patient
	decode(t, w, &got)
	assert.Equal(t, "Maria S. Silva", got.Name)
	assert.Nil(t, got.Age)

	w = api.do(http.MethodGet, "/api/patients/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/patients/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodDelete, pathf("/api/patients/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, w.Body.String())

	w = api.do(http.MethodDelete, pathf("/api/patients/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, api.audit.has("patient_deleted"))
}

func TestDentistsAndTreatments(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("ana", "staff", "")

	w := api.do(http.MethodPost, "/api/dentists", token, gin.H{"name": "Dr. Costa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := api.create(token, "/api/dentists", gin.H{
		"name":           "Dr. Costa",
		"specialization": "Orthodontics",
		"available":      []string{"Mon 09:00-12:00"},
	})
	w = api.do(http.MethodGet, pathf("/api/dentists/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d models.Dentist
	decode(t, w, &d)
	assert.Equal(t, []string{"Mon 09:00-12:00"}, d.Available)

	// seeded catalogue
	w = api.do(http.MethodGet, "/api/treatments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var treatments []models.Treatment
	decode(t, w, &treatments)
	assert.Len(t, treatments, 9)

	w = api.do(http.MethodPost, "/api/treatments", token, gin.H{"name": "Implant", "duration": "2 hours", "type": "MULTIPLE VISIT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/treatments", token, gin.H{"name": "Implant", "price": "1200", "duration": "2 hours", "type": "EVERY DAY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, price := range []string{"Infinity", "-inf", "NaN"} {
		w = api.do(http.MethodPost, "/api/treatments", token, gin.H{"name": "Implant", "price": price, "duration": "2 hours", "type": "SINGLE VISIT"})
		assert.Equal(t, http.StatusBadRequest, w.Code, price)
	}
	w = api.do(http.MethodGet, "/api/treatments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &treatments)
	assert.Len(t, treatments, 9)

	tid := api.create(token, "/api/treatments", gin.H{"name": "Implant", "price": "1200", "duration": "2 hours", "type": "multiple visit"})
	w = api.do(http.MethodGet, pathf("/api/treatments/%d", tid), token, nil)
	var tr models.Treatment
	decode(t, w, &tr)
	assert.Equal(t, 1200.0, tr.Price)
	assert.Equal(t, models.TreatmentMultipleVisit, tr.Type)
	assert.Nil(t, tr.Rating)
}

// ======================================================
// APPOINTMENTS
// ======================================================

func TestAppointments(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("ana", "staff", "")
	patientID, dentistID := seedClinic(t, api, token)

	body := func(date, clock string) gin.H {
		return gin.H{
			"patient": patientID,
			"dentist": dentistID,
			"date":    date,
			"time":    clock,
			"service": "Teeth Cleaning",
		}
	}

	t.Run("validation", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/appointments", token, gin.H{"patient": patientID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		_, msg := errorOf(t, w)
		assert.Equal(t, "Missing fields", msg)

		w = api.do(http.MethodPost, "/api/appointments", token, body("20-10-2026", "09:00"))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		bad := body("2026-10-20", "09:00")
		bad["patient"] = 999
		w = api.do(http.MethodPost, "/api/appointments", token, bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		code, _ := errorOf(t, w)
		assert.Equal(t, "patient_not_found", code)
	})

	first := api.create(token, "/api/appointments", body("2026-10-20", "09:00"))

	w := api.do(http.MethodGet, pathf("/api/appointments/%d", first), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ap models.Appointment
	decode(t, w, &ap)
	assert.Equal(t, "Pending", ap.Status)
	assert.Equal(t, patientID, ap.PatientID)

	t.Run("double booking", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/appointments", token, body("2026-10-20", "09:00"))
		assert.Equal(t, http.StatusConflict, w.Code)
		_, msg := errorOf(t, w)
		assert.Equal(t, "Dentist already booked", msg)
		assert.True(t, api.audit.has("appointment_conflict"))
	})

	second := api.create(token, "/api/appointments", body("2026-10-21", "10:30"))

	t.Run("update", func(t *testing.T) {
		w := api.do(http.MethodPut, pathf("/api/appointments/%d", second), token, body("2026-10-20", "09:00"))
		assert.Equal(t, http.StatusConflict, w.Code)

		upd := body("2026-10-21", "11:00")
		upd["status"] = "Confirmed"
		w = api.do(http.MethodPut, pathf("/api/appointments/%d", second), token, upd)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"Confirmed"`)
	})

	t.Run("filters", func(t *testing.T) {
		var list []models.Appointment

		w := api.do(http.MethodGet, "/api/appointments?date=2026-10-21", token, nil)
		decode(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, second, list[0].ID)

		w = api.do(http.MethodGet, "/api/appointments?from=2026-10-01&to=2026-10-31", token, nil)
		decode(t, w, &list)
		require.Len(t, list, 2)
		assert.Equal(t, first, list[0].ID)

		w = api.do(http.MethodGet, "/api/appointments?status=Confirmed", token, nil)
		decode(t, w, &list)
		assert.Len(t, list, 1)

		w = api.do(http.MethodGet, "/api/appointments?date=tomorrow", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transitions", func(t *testing.T) {
		w := api.do(http.MethodPatch, pathf("/api/appointments/%d/cancel", first), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &ap)
		assert.Equal(t, "Cancelled", ap.Status)
		assert.NotNil(t, ap.CancelledAt)

		w = api.do(http.MethodPatch, pathf("/api/appointments/%d/complete", first), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		code, _ := errorOf(t, w)
		assert.Equal(t, "invalid_state", code)

		// a cancelled appointment still holds its slot
		w = api.do(http.MethodPost, "/api/appointments", token, body("2026-10-20", "09:00"))
		assert.Equal(t, http.StatusConflict, w.Code)

		w = api.do(http.MethodPatch, pathf("/api/appointments/%d/complete", second), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// a plain edit does not reopen it
		w = api.do(http.MethodPut, pathf("/api/appointments/%d", second), token, body("2026-10-21", "11:00"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var done models.Appointment
		decode(t, w, &done)
		assert.Equal(t, "Completed", done.Status)
		assert.NotNil(t, done.CompletedAt)
		assert.Nil(t, done.CancelledAt)

		reopen := body("2026-10-21", "11:00")
		reopen["status"] = "Pending"
		w = api.do(http.MethodPut, pathf("/api/appointments/%d", second), token, reopen)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = api.do(http.MethodPatch, pathf("/api/appointments/%d/cancel", second), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		closed := body("2026-10-22", "09:00")
		closed["status"] = "Completed"
		w = api.do(http.MethodPost, "/api/appointments", token, closed)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		code, _ = errorOf(t, w)
		assert.Equal(t, "invalid_status", code)
	})

	t.Run("references block deletes", func(t *testing.T) {
		w := api.do(http.MethodDelete, pathf("/api/patients/%d", patientID), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = api.do(http.MethodDelete, pathf("/api/dentists/%d", dentistID), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do(http.MethodDelete, pathf("/api/appointments/%d", first), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(http.MethodDelete, pathf("/api/appointments/%d", first), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// slot is free again
		api.create(token, "/api/appointments", body("2026-10-20", "09:00"))
	})
}

func TestAppointmentCheckout(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("ana", "staff", "")
	patientID, dentistID := seedClinic(t, api, token)

	known := api.create(token, "/api/appointments", gin.H{
		"patient": patientID, "dentist": dentistID, "date": "2026-10-20", "time": "09:00", "service": "veneers",
	})
	unknown := api.create(token, "/api/appointments", gin.H{
		"patient": patientID, "dentist": dentistID, "date": "2026-10-20", "time": "10:00", "service": "Consultation",
	})

	w := api.do(http.MethodPost, pathf("/api/appointments/%d/checkout", known), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"preferenceId":"pref-1","initPoint":"https://mp.example/pay/pref-1"}`, w.Body.String())

	w = api.do(http.MethodPost, pathf("/api/appointments/%d/checkout", unknown), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	api.checkout.disabled = true
	w = api.do(http.MethodPost, pathf("/api/appointments/%d/checkout", known), token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ======================================================
// SCHEDULES
// ======================================================

func TestSchedules(t *testing.T) {
	api := newTestAPI(t)
	staff := api.register("ana", "staff", "")
	dentist := api.register("bob", "dentist", "")
	_, dentistID := seedClinic(t, api, staff)

	w := api.do(http.MethodPost, "/api/schedules", dentist, gin.H{"title": "Holiday", "date": "2026-12-24"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"date": "2026-12-24"}},
		{"bad type", gin.H{"title": "x", "date": "2026-12-24", "type": "party"}},
		{"end before start", gin.H{"title": "x", "date": "2026-12-24", "endDate": "2026-12-20"}},
		{"bad clock", gin.H{"title": "x", "date": "2026-12-24", "startTime": "9"}},
		{"inverted times", gin.H{"title": "x", "date": "2026-12-24", "startTime": "10:00", "endTime": "09:00"}},
		{"unknown dentist", gin.H{"title": "x", "date": "2026-12-24", "dentistId": "999"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/schedules", staff, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	holiday := api.create(staff, "/api/schedules", gin.H{
		"title": "Christmas", "date": "2026-12-24", "endDate": "2026-12-26", "type": "holiday", "dentistId": "",
	})
	api.create(staff, "/api/schedules", gin.H{
		"title": "Staff meeting", "date": "2026-12-10", "startTime": "08:00", "endTime": "09:00",
		"type": "meeting", "dentistId": dentistID,
	})

	var list []models.Schedule

	w = api.do(http.MethodGet, "/api/schedules?from=2026-12-25&to=2026-12-31", dentist, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, holiday, list[0].ID)
	assert.Nil(t, list[0].DentistID)

	w = api.do(http.MethodGet, pathf("/api/schedules?dentist=%d", dentistID), dentist, nil)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "meeting", list[0].Type)

	w = api.do(http.MethodGet, "/api/schedules", dentist, nil)
	decode(t, w, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-12-10", list[0].Date)

	w = api.do(http.MethodPut, pathf("/api/schedules/%d", holiday), staff, gin.H{"title": "Christmas break", "date": "2026-12-24"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"schedule"`)

	w = api.do(http.MethodDelete, pathf("/api/schedules/%d", holiday), dentist, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, pathf("/api/schedules/%d", holiday), staff, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ======================================================
// AVATAR
// ======================================================

func avatarRequest(t *testing.T, token string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 512, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 512; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, img))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAvatarUpload(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("ana", "staff", "")

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, avatarRequest(t, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/avatars/1/a.webp")
	assert.Equal(t, []byte("RIFF"), api.avatars.got[:4])

	var user models.User
	require.NoError(t, api.db.Where("username = ?", "ana").First(&user).Error)
	assert.Equal(t, "https://cdn.example.com/avatars/1/a.webp", user.AvatarURL)

	api.avatars.disabled = true
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, avatarRequest(t, token))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = api.do(http.MethodPost, "/api/profile/avatar", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// AUDIT LOGS
// ======================================================

func TestAuditLogs(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register("root", "admin", "")
	staff := api.register("ana", "staff", "")

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		action := "patient_created"
		if i%3 == 0 {
			action = "appointment_conflict"
		}
		require.NoError(t, api.db.Create(&models.AuditLog{
			Action:    action,
			Entity:    "patient",
			CreatedAt: base.AddDate(0, 0, i%10),
		}).Error)
	}

	w := api.do(http.MethodGet, "/api/audit-logs", staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var page struct {
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
		Total int64             `json:"total"`
		Items []models.AuditLog `json:"items"`
	}

	w = api.do(http.MethodGet, "/api/audit-logs", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, int64(60), page.Total)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Items, 50)

	w = api.do(http.MethodGet, "/api/audit-logs?page=2&limit=50", admin, nil)
	decode(t, w, &page)
	assert.Len(t, page.Items, 10)

	w = api.do(http.MethodGet, "/api/audit-logs?limit=1000", admin, nil)
	decode(t, w, &page)
	assert.Equal(t, 200, page.Limit)

	w = api.do(http.MethodGet, "/api/audit-logs?action=appointment_conflict", admin, nil)
	decode(t, w, &page)
	assert.Equal(t, int64(20), page.Total)

	w = api.do(http.MethodGet, "/api/audit-logs?from=2026-10-01&to=2026-10-01", admin, nil)
	decode(t, w, &page)
	assert.Equal(t, int64(6), page.Total)

	w = api.do(http.MethodGet, "/api/audit-logs?from=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
