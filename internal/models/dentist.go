package models

import "time"

type Dentist struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name           string `gorm:"size:100;not null" json:"name"`
	Specialization string `gorm:"size:100;not null" json:"specialization"`
	Contact        string `gorm:"size:50" json:"contact"`
	Email          string `gorm:"size:100" json:"email"`
	Schedule       string `gorm:"size:255" json:"schedule"`
	License        string `gorm:"size:50" json:"license"`

	// Free-form availability slots, e.g. "Mon 09:00-12:00".
	Available []string `gorm:"type:text;serializer:json" json:"available"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
