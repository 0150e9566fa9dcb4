package appointment

import (
	"context"
	"time"

	"github.com/classicdental/dental-scheduler/internal/audit"
	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// ChangeStatus applies one of the terminal transitions (cancel, complete).
type ChangeStatus struct {
	repo   domain.Repository
	audit  Auditor
	now    Clock
	action string
	apply  func(*models.Appointment, time.Time) error
}

func NewCancelAppointment(repo domain.Repository, audit Auditor, now Clock) *ChangeStatus {
	return &ChangeStatus{
		repo:   repo,
		audit:  audit,
		now:    now,
		action: "appointment_cancelled",
		apply:  domain.Cancel,
	}
}

func NewCompleteAppointment(repo domain.Repository, audit Auditor, now Clock) *ChangeStatus {
	return &ChangeStatus{
		repo:   repo,
		audit:  audit,
		now:    now,
		action: "appointment_completed",
		apply:  domain.Complete,
	}
}

func (uc *ChangeStatus) Execute(
	ctx context.Context,
	actorID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := getAppointment(ctx, uc.repo, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := uc.apply(ap, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actor(actorID),
		Action:   uc.action,
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
