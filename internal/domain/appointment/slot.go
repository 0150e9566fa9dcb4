package appointment

import (
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/timezone"
)

const (
	ErrCodeMissingFields  = "missing_fields"
	ErrCodeInvalidDate    = "invalid_date_or_time"
	ErrCodePatientMissing = "patient_not_found"
	ErrCodeDentistMissing = "dentist_not_found"
	ErrCodeSlotTaken      = "dentist_already_booked"
	ErrCodeNotFound       = "appointment_not_found"
)

// Slot identifies a dentist's booking position. Two appointments may not
// share one, whatever their status.
type Slot struct {
	DentistID uint
	Date      string
	Time      string
}

func (s Slot) Validate() error {
	if s.DentistID == 0 || s.Date == "" || s.Time == "" {
		return httperr.ErrBusiness(ErrCodeMissingFields)
	}
	if !timezone.IsDate(s.Date) || !timezone.IsClock(s.Time) {
		return httperr.ErrBusiness(ErrCodeInvalidDate)
	}
	return nil
}
