package dto

import "github.com/google/uuid"

// Request DTOs

// UpdatePatientProfileRequest leaves a field unchanged when it is empty or absent.
type UpdatePatientProfileRequest struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=100"`
	Age     *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Contact string `json:"contact" validate:"omitempty,max=100"`
}

// Response DTOs

type PatientResponse struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Name     string    `json:"name"`
	Age      *int      `json:"age,omitempty"`
	Contact  string    `json:"contact,omitempty"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
