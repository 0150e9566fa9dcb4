package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/audit"
	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/models"
)

type UpdateAppointment struct {
	repo  domain.Repository
	audit Auditor
	now   Clock
}

func NewUpdateAppointment(repo domain.Repository, audit Auditor, now Clock) *UpdateAppointment {
	return &UpdateAppointment{
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// Execute replaces the editable fields of appointment id. The status only
// moves along the allowed transitions.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	id uint,
	in AppointmentInput,
) (*models.Appointment, error) {

	ap, err := getAppointment(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	if _, err := in.validate(ctx, uc.repo); err != nil {
		return nil, err
	}

	if err := domain.ChangeTo(ap, in.Status, uc.now()); err != nil {
		return nil, err
	}

	if err := assertSlotFree(ctx, uc.repo, uc.audit, in, ap.ID); err != nil {
		return nil, err
	}

	ap.PatientID = in.PatientID
	ap.DentistID = in.DentistID
	ap.Date = in.Date
	ap.Time = in.Time
	ap.Service = in.Service
	ap.Notes = in.Notes

	if err := uc.repo.Update(ctx, ap); err != nil {
		if httperr.IsUniqueViolation(err) || httperr.IsExclusionConflict(err) {
			uc.audit.Dispatch(conflictEvent(in, 0))
			return nil, httperr.ErrBusiness(domain.ErrCodeSlotTaken)
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actor(in.ActorID),
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func getAppointment(ctx context.Context, repo domain.Repository, id uint) (*models.Appointment, error) {
	ap, err := repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness(domain.ErrCodeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return ap, nil
}
