package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	Username        string           `json:"username" validate:"required,min=3,max=150"`
	Password        string           `json:"password" validate:"required,min=6"`
	Name            string           `json:"name" validate:"required,min=2,max=100"`
	Specialization  string           `json:"specialization" validate:"required,max=100"`
	Availability    string           `json:"availability" validate:"omitempty,max=100"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Username        string          `json:"username,omitempty"`
	Name            string          `json:"name"`
	Specialization  string          `json:"specialization"`
	Availability    string          `json:"availability"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
