package models

import "time"

const (
	TreatmentSingleVisit   = "SINGLE VISIT"
	TreatmentMultipleVisit = "MULTIPLE VISIT"
)

type Treatment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string   `gorm:"size:100;not null" json:"name"`
	Price    float64  `gorm:"not null" json:"price"`
	Duration string   `gorm:"size:50;not null" json:"duration"`
	Type     string   `gorm:"size:20;not null" json:"type"`
	Rating   *float64 `json:"rating"`
	Reviews  int      `gorm:"default:0" json:"reviews"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func floatPtr(v float64) *float64 { return &v }

// DefaultTreatments is the catalogue installed on an empty treatments table.
func DefaultTreatments() []Treatment {
	return []Treatment{
		{Name: "General Checkup", Price: 50, Duration: "≥ 1 hour", Type: TreatmentSingleVisit},
		{Name: "Teeth Whitening", Price: 300, Duration: "≥ 1 hour", Type: TreatmentMultipleVisit},
		{Name: "Teeth Cleaning", Price: 75, Duration: "≥ 1 hour", Type: TreatmentSingleVisit, Rating: floatPtr(3.8), Reviews: 48},
		{Name: "Tooth Extraction", Price: 300, Duration: "≥ 1 hour", Type: TreatmentMultipleVisit, Rating: floatPtr(4.5), Reviews: 110},
		{Name: "Tooth Fillings", Price: 210, Duration: "≈ 1.5 hour", Type: TreatmentSingleVisit, Rating: floatPtr(3.2), Reviews: 75},
		{Name: "Tooth Scaling", Price: 140, Duration: "≈ 1.5 hour", Type: TreatmentMultipleVisit, Rating: floatPtr(4.5), Reviews: 166},
		{Name: "Tooth Braces (Metal)", Price: 3000, Duration: "≥ 1.5 hour", Type: TreatmentMultipleVisit, Rating: floatPtr(4.0), Reviews: 220},
		{Name: "Veneers", Price: 925, Duration: "≥ 1.5 hour", Type: TreatmentSingleVisit, Rating: floatPtr(4.0), Reviews: 32},
		{Name: "Bonding", Price: 190, Duration: "≥ 1.5 hour", Type: TreatmentSingleVisit, Rating: floatPtr(4.0), Reviews: 40},
	}
}
