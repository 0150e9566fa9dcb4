package models

import "time"

type Patient struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name           string `gorm:"size:100;not null" json:"name"`
	Age            *int   `json:"age"`
	Gender         string `gorm:"size:20" json:"gender"`
	Contact        string `gorm:"size:50;not null" json:"contact"`
	Email          string `gorm:"size:100" json:"email"`
	Address        string `gorm:"size:255" json:"address"`
	MedicalHistory string `gorm:"type:text" json:"medicalHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
