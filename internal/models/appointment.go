package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientID uint    `gorm:"not null;index" json:"patient"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	// One booking per dentist per slot.
	DentistID uint    `gorm:"not null;uniqueIndex:idx_appointment_slot" json:"dentist"`
	Dentist   Dentist `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Date      string  `gorm:"column:slot_date;size:10;not null;uniqueIndex:idx_appointment_slot" json:"date"`
	Time      string  `gorm:"column:slot_time;size:5;not null;uniqueIndex:idx_appointment_slot" json:"time"`

	Service string `gorm:"size:100;not null" json:"service"`
	Status  string `gorm:"size:20;default:'Pending'" json:"status"`
	Notes   string `gorm:"size:255" json:"notes"`

	CancelledAt *time.Time `json:"cancelledAt"`
	CompletedAt *time.Time `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
