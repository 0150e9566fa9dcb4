package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/dto"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/httpresp"
	"github.com/classicdental/dental-scheduler/internal/infra/billing"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/timezone"
	ucAppointment "github.com/classicdental/dental-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create   *ucAppointment.CreateAppointment
	update   *ucAppointment.UpdateAppointment
	cancel   *ucAppointment.ChangeStatus
	complete *ucAppointment.ChangeStatus
	list     *ucAppointment.ListAppointments
	get      *ucAppointment.GetAppointment
	remove   *ucAppointment.DeleteAppointment

	db       *gorm.DB
	checkout billing.Checkout
}

type AppointmentUseCases struct {
	Create   *ucAppointment.CreateAppointment
	Update   *ucAppointment.UpdateAppointment
	Cancel   *ucAppointment.ChangeStatus
	Complete *ucAppointment.ChangeStatus
	List     *ucAppointment.ListAppointments
	Get      *ucAppointment.GetAppointment
	Delete   *ucAppointment.DeleteAppointment
}

func NewAppointmentHandler(
	uc AppointmentUseCases,
	db *gorm.DB,
	checkout billing.Checkout,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:   uc.Create,
		update:   uc.Update,
		cancel:   uc.Cancel,
		complete: uc.Complete,
		list:     uc.List,
		get:      uc.Get,
		remove:   uc.Delete,
		db:       db,
		checkout: checkout,
	}
}

// ======================================================
// ERRORS
// ======================================================

var appointmentErrors = map[string]struct {
	status  int
	message string
}{
	domain.ErrCodeMissingFields:  {http.StatusBadRequest, msgMissingFields},
	domain.ErrCodeInvalidDate:    {http.StatusBadRequest, "Invalid date or time"},
	domain.ErrCodeInvalidStatus:  {http.StatusBadRequest, "Invalid status"},
	domain.ErrCodePatientMissing: {http.StatusBadRequest, "Patient not found"},
	domain.ErrCodeDentistMissing: {http.StatusBadRequest, "Dentist not found"},
	domain.ErrCodeSlotTaken:      {http.StatusConflict, "Dentist already booked"},
	domain.ErrCodeNotFound:       {http.StatusNotFound, msgNotFound},
	domain.ErrCodeInvalidState:   {http.StatusConflict, "Appointment is already closed"},
}

func writeAppointmentError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)
	if e, ok := appointmentErrors[code]; ok {
		httperr.Write(c, e.status, code, e.message)
		return
	}
	httperr.Internal(c, "appointment_failed", err)
}

func toInput(c *gin.Context, req *dto.AppointmentRequest) ucAppointment.AppointmentInput {
	return ucAppointment.AppointmentInput{
		ActorID:   middleware.CurrentUserID(c),
		PatientID: req.Patient.Value,
		DentistID: req.Dentist.Value,
		Date:      req.Date,
		Time:      req.Time,
		Service:   req.Service,
		Status:    req.Status,
		Notes:     req.Notes,
	}
}

// ======================================================
// LIST / GET
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	f := domain.ListFilter{
		Date:   strings.TrimSpace(c.Query("date")),
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
		Status: strings.TrimSpace(c.Query("status")),
	}

	for _, d := range []string{f.Date, f.From, f.To} {
		if d != "" && !timezone.IsDate(d) {
			httperr.BadRequest(c, "invalid_filter", "Dates must be YYYY-MM-DD")
			return
		}
	}

	var ok bool
	if f.DentistID, ok = queryID(c, "dentist"); !ok {
		return
	}
	if f.PatientID, ok = queryID(c, "patient"); !ok {
		return
	}

	items, err := h.list.Execute(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "list_failed", err)
		return
	}

	httpresp.OK(c, items)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeAppointmentError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// CREATE / UPDATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), toInput(c, &req))
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), id, toInput(c, &req))
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete)
}

func (h *AppointmentHandler) transition(c *gin.Context, uc *ucAppointment.ChangeStatus) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := uc.Execute(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// DELETE
// ======================================================

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.Deleted(c)
}

// ======================================================
// CHECKOUT
// ======================================================

func (h *AppointmentHandler) Checkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeAppointmentError(c, err)
		return
	}
	if domain.Status(ap.Status) == domain.StatusCancelled {
		writeAppointmentError(c, httperr.ErrBusiness(domain.ErrCodeInvalidState))
		return
	}

	treatment, ok := treatmentByName(c, h.db, ap.Service)
	if !ok {
		return
	}

	link, err := h.checkout.CreateLink(c.Request.Context(), ap, treatment)
	if errors.Is(err, billing.ErrDisabled) {
		httperr.Unavailable(c, "checkout_disabled", "Online payment is not configured")
		return
	}
	if err != nil {
		httperr.Write(c, http.StatusBadGateway, "checkout_failed", err.Error())
		return
	}

	httpresp.OK(c, link)
}
