package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Date     string `json:"date" validate:"required"` // YYYY-MM-DD
	Time     string `json:"time" validate:"required"` // HH:MM
}

type UpdateAppointmentRequest struct {
	Status       string `json:"status" validate:"required,appointment_outcome"`
	Diagnosis    string `json:"diagnosis" validate:"omitempty,max=2000"`
	Prescription string `json:"prescription" validate:"omitempty,max=2000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	DoctorName   string    `json:"doctor_name,omitempty"`
	PatientID    uuid.UUID `json:"patient_id"`
	PatientName  string    `json:"patient_name,omitempty"`
	DateTime     time.Time `json:"date_time"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	Diagnosis    *string   `json:"diagnosis,omitempty"`
	Prescription *string   `json:"prescription,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
