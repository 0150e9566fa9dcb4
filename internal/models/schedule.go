package models

import "time"

const (
	ScheduleGeneral   = "schedule"
	ScheduleProcedure = "procedure"
	ScheduleHoliday   = "holiday"
	ScheduleBlocked   = "blocked"
	ScheduleMeeting   = "meeting"
)

func IsValidScheduleType(t string) bool {
	switch t {
	case ScheduleGeneral, ScheduleProcedure, ScheduleHoliday, ScheduleBlocked, ScheduleMeeting:
		return true
	}
	return false
}

// Schedule is a calendar entry that is not a booked appointment.
type Schedule struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string `gorm:"size:100;not null" json:"title"`
	Date        string `gorm:"column:start_date;size:10;not null;index" json:"date"`
	EndDate     string `gorm:"column:end_date;size:10" json:"endDate"`
	StartTime   string `gorm:"size:5" json:"startTime"`
	EndTime     string `gorm:"size:5" json:"endTime"`
	Type        string `gorm:"size:20;default:'schedule'" json:"type"`
	Procedure   string `gorm:"size:100" json:"procedure"`
	Description string `gorm:"type:text" json:"description"`

	DentistID *uint `gorm:"index" json:"dentistId"`
	PatientID *uint `json:"patientId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
