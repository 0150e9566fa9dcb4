package appointment

import (
	"time"

	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

const (
	ErrCodeInvalidState  = "invalid_state"
	ErrCodeInvalidStatus = "invalid_status"
)

// ParseStatus maps "" to the initial status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	case "":
		return InitialStatus(), nil
	}
	return "", httperr.ErrBusiness(ErrCodeInvalidStatus)
}

// isOpen reports whether the appointment may still transition.
func isOpen(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Validations
// ===============================

func CanCancel(current Status) error {
	if !isOpen(current) {
		return httperr.ErrBusiness(ErrCodeInvalidState)
	}
	return nil
}

func CanComplete(current Status) error {
	if !isOpen(current) {
		return httperr.ErrBusiness(ErrCodeInvalidState)
	}
	return nil
}

// CreatableStatus limits new bookings to the open statuses.
func CreatableStatus(s Status) error {
	if !isOpen(s) {
		return httperr.ErrBusiness(ErrCodeInvalidStatus)
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	ap.CompletedAt = nil
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	ap.CancelledAt = nil
	return nil
}

// ChangeTo moves ap to the requested status on a full update. An empty
// request keeps the current status. Closed appointments never reopen, and
// closing goes through Cancel or Complete so the timestamps match.
func ChangeTo(ap *models.Appointment, requested string, now time.Time) error {
	if requested == "" || Status(requested) == Status(ap.Status) {
		return nil
	}

	next, err := ParseStatus(requested)
	if err != nil {
		return err
	}

	switch next {
	case StatusCancelled:
		return Cancel(ap, now)
	case StatusCompleted:
		return Complete(ap, now)
	}

	if !isOpen(Status(ap.Status)) {
		return httperr.ErrBusiness(ErrCodeInvalidState)
	}
	ap.Status = string(next)
	return nil
}
