package repository

import (
	"context"
	"errors"
	"time"

	"hospital-management/internal/domain/entity"
	domainRepo "hospital-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindBookedSlot returns the Booked appointment holding (doctorID, dateTime), or nil when the slot is free.
func (r *appointmentRepository) FindBookedSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, dateTime time.Time) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND date_time = ? AND status = ?", doctorID, dateTime, entity.AppointmentStatusBooked).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("date_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Order("date_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateOutcome writes only status, diagnosis and prescription; the slot and both references stay untouched.
func (r *appointmentRepository) UpdateOutcome(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).
		Model(appointment).
		Select("Status", "Diagnosis", "Prescription", "UpdatedAt").
		Updates(appointment).Error
}

func (r *appointmentRepository) DeleteByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("doctor_id = ?", doctorID).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("patient_id = ?", patientID).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
