package repository

import (
	"context"
	"time"

	"hospital-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindBookedSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, dateTime time.Time) (*entity.Appointment, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Appointment, error)
	UpdateOutcome(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	DeleteByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (int64, error)
	DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error)
}
