package dto

// AppointmentRequest is the body of create and update. Zero-valued
// references are reported as missing fields.
type AppointmentRequest struct {
	Patient Number[uint] `json:"patient"`
	Dentist Number[uint] `json:"dentist"`
	Date    string       `json:"date"`
	Time    string       `json:"time"`
	Service string       `json:"service"`
	Status  string       `json:"status"`
	Notes   string       `json:"notes"`
}

type ScheduleRequest struct {
	Title       string       `json:"title"`
	Date        string       `json:"date"`
	EndDate     string       `json:"endDate"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Type        string       `json:"type"`
	Procedure   string       `json:"procedure"`
	Description string       `json:"description"`
	DentistID   Number[uint] `json:"dentistId"`
	PatientID   Number[uint] `json:"patientId"`
}
