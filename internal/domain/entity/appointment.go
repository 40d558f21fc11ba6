package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "Booked"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// AppointmentTimeLayout is the minute-precision format a booking's date and time are parsed with.
const AppointmentTimeLayout = "2006-01-02 15:04"

// Appointment links one doctor and one patient at a point in time.
// At most one Booked appointment may exist per (DoctorID, DateTime).
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_slot,priority:1" json:"doctor_id"`
	PatientID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DateTime     time.Time         `gorm:"not null;index:idx_appointments_slot,priority:2" json:"date_time"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;default:'Booked';index:idx_appointments_slot,priority:3" json:"status"`
	Diagnosis    *string           `gorm:"type:text" json:"diagnosis,omitempty"`
	Prescription *string           `gorm:"type:text" json:"prescription,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentStatusBooked
	}
	return nil
}

// IsBooked checks if the appointment still holds its slot
func (a *Appointment) IsBooked() bool {
	return a.Status == AppointmentStatusBooked
}

// IsValid reports whether s is one of the three lifecycle states.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// IsOutcome reports whether a doctor may set s on an appointment.
// Booked is excluded: re-opening a slot would bypass the double-booking check.
func (s AppointmentStatus) IsOutcome() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}
