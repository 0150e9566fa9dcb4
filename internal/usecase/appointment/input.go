package appointment

import (
	"context"
	"strings"

	"github.com/classicdental/dental-scheduler/internal/audit"
	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/httperr"
)

// ======================================================
// INPUT
// ======================================================

type AppointmentInput struct {
	ActorID uint

	PatientID uint
	DentistID uint
	Date      string
	Time      string
	Service   string
	Status    string
	Notes     string
}

func (in AppointmentInput) slot() domain.Slot {
	return domain.Slot{DentistID: in.DentistID, Date: in.Date, Time: in.Time}
}

// validate runs the presence, format and reference checks shared by
// create and update.
func (in *AppointmentInput) validate(ctx context.Context, repo domain.Repository) (domain.Status, error) {
	in.Service = strings.TrimSpace(in.Service)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Status = strings.TrimSpace(in.Status)

	if in.PatientID == 0 || in.Service == "" {
		return "", httperr.ErrBusiness(domain.ErrCodeMissingFields)
	}
	if err := in.slot().Validate(); err != nil {
		return "", err
	}

	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return "", err
	}

	ok, err := repo.PatientExists(ctx, in.PatientID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", httperr.ErrBusiness(domain.ErrCodePatientMissing)
	}

	ok, err = repo.DentistExists(ctx, in.DentistID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", httperr.ErrBusiness(domain.ErrCodeDentistMissing)
	}

	return status, nil
}

// assertSlotFree reports a conflict as a business error and audits it.
func assertSlotFree(
	ctx context.Context,
	repo domain.Repository,
	auditor Auditor,
	in AppointmentInput,
	excludeID uint,
) error {

	existing, err := repo.FindBySlot(ctx, in.slot(), excludeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	auditor.Dispatch(conflictEvent(in, existing.ID))
	return httperr.ErrBusiness(domain.ErrCodeSlotTaken)
}

func conflictEvent(in AppointmentInput, holderID uint) audit.Event {
	ev := audit.Event{
		Action: "appointment_conflict",
		Entity: "appointment",
		Metadata: map[string]any{
			"dentist": in.DentistID,
			"date":    in.Date,
			"time":    in.Time,
		},
	}
	if holderID != 0 {
		ev.EntityID = audit.Uint(holderID)
	}
	if in.ActorID != 0 {
		ev.UserID = audit.Uint(in.ActorID)
	}
	return ev
}

func actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	return audit.Uint(id)
}
