package appointment

import (
	"context"

	"github.com/classicdental/dental-scheduler/internal/models"
)

type ListFilter struct {
	Date      string
	From      string
	To        string
	DentistID uint
	PatientID uint
	Status    string
}

type Repository interface {
	// -------- References --------
	PatientExists(ctx context.Context, id uint) (bool, error)
	DentistExists(ctx context.Context, id uint) (bool, error)

	// -------- Slot --------
	// FindBySlot returns the appointment holding slot, ignoring excludeID.
	// It returns (nil, nil) when the slot is free.
	FindBySlot(ctx context.Context, slot Slot, excludeID uint) (*models.Appointment, error)

	// -------- CRUD --------
	Create(ctx context.Context, ap *models.Appointment) error
	Get(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, ap *models.Appointment) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, f ListFilter) ([]models.Appointment, error)
}
