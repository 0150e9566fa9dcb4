package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// References
// --------------------------------------------------

func (r *AppointmentGormRepository) PatientExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Patient{}, id)
}

func (r *AppointmentGormRepository) DentistExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Dentist{}, id)
}

func (r *AppointmentGormRepository) exists(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Slot
// --------------------------------------------------

func (r *AppointmentGormRepository) FindBySlot(
	ctx context.Context,
	slot domain.Slot,
	excludeID uint,
) (*models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where("dentist_id = ? AND slot_date = ? AND slot_time = ?", slot.DentistID, slot.Date, slot.Time)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var ap models.Appointment
	res := q.Order("id ASC").Limit(1).Find(&ap)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &ap, nil
}

// --------------------------------------------------
// CRUD
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
}

func (r *AppointmentGormRepository) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) Update(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) List(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.Date != "" {
		q = q.Where("slot_date = ?", f.Date)
	}
	// ISO dates compare correctly as strings
	if f.From != "" {
		q = q.Where("slot_date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("slot_date <= ?", f.To)
	}
	if f.DentistID != 0 {
		q = q.Where("dentist_id = ?", f.DentistID)
	}
	if f.PatientID != 0 {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	apps := make([]models.Appointment, 0)
	if err := q.
		Order("slot_date ASC").
		Order("slot_time ASC").
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
