package appointment

import (
	"context"

	"github.com/classicdental/dental-scheduler/internal/audit"
	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewCreateAppointment(repo domain.Repository, audit Auditor) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in AppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Fields + references
	// --------------------------------------------------
	status, err := in.validate(ctx, uc.repo)
	if err != nil {
		return nil, err
	}
	if err := domain.CreatableStatus(status); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Double booking
	// --------------------------------------------------
	if err := assertSlotFree(ctx, uc.repo, uc.audit, in, 0); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Insert (the unique index settles races)
	// --------------------------------------------------
	ap := &models.Appointment{
		PatientID: in.PatientID,
		DentistID: in.DentistID,
		Date:      in.Date,
		Time:      in.Time,
		Service:   in.Service,
		Status:    string(status),
		Notes:     in.Notes,
	}

	if err := uc.repo.Create(ctx, ap); err != nil {
		if httperr.IsUniqueViolation(err) || httperr.IsExclusionConflict(err) {
			uc.audit.Dispatch(conflictEvent(in, 0))
			return nil, httperr.ErrBusiness(domain.ErrCodeSlotTaken)
		}
		return nil, err
	}

	// --------------------------------------------------
	// 4️⃣ Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   actor(in.ActorID),
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
