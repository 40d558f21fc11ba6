package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"hospital-management/internal/converter"
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
	"hospital-management/internal/domain/repository"
	"hospital-management/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	ListDoctorAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	ListMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	ListAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
	slotLocker      service.SlotLocker
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	slotLocker service.SlotLocker,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
		slotLocker:      slotLocker,
	}
}

// ParseSlot parses a booking date and time given as "YYYY-MM-DD" and "HH:MM" in UTC.
func ParseSlot(date, clock string) (time.Time, error) {
	at, err := time.ParseInLocation(entity.AppointmentTimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return at, nil
}

// BookAppointment books the acting patient with a doctor.
//
// Flow:
// 1. Resolve the patient profile and parse the slot; nothing is written on bad input
// 2. Take the slot lock so identical concurrent requests fail fast
// 3. In one transaction lock the doctor row, check the slot is free and insert
func (u *appointmentUsecase) BookAppointment(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := requireRole(actor, entity.RolePatient); err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientProfileMissing
	}

	at, err := ParseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	doctor, err := u.doctorRepo.FindByID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	release, err := u.slotLocker.Acquire(ctx, doctorID, at)
	if err != nil {
		if errors.Is(err, service.ErrSlotLocked) {
			return nil, ErrSlotBusy
		}
		// The lock only narrows the race; the row lock below still applies.
		u.log.Warnf("Failed to acquire slot lock, continuing without it: %+v", err)
		release = func() {}
	}
	defer release()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// The doctor may have been deleted since the lookup above.
	locked, err := u.doctorRepo.FindByIDForUpdate(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if locked == nil {
		return nil, ErrDoctorNotFound
	}

	taken, err := u.appointmentRepo.FindBookedSlot(ctx, tx, doctorID, at)
	if err != nil {
		u.log.Warnf("Failed to check slot for doctor %s at %s: %+v", doctorID, at, err)
		return nil, err
	}
	if taken != nil {
		return nil, ErrSlotTaken
	}

	appointment := &entity.Appointment{
		DoctorID:  doctorID,
		PatientID: patient.ID,
		DateTime:  at,
		Status:    entity.AppointmentStatusBooked,
	}
	if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, patient=%s, at=%s", appointment.ID, doctorID, patient.ID, at.Format(entity.AppointmentTimeLayout))

	appointment.Doctor = doctor
	appointment.Patient = patient
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateAppointment records the outcome of one of the acting doctor's
// appointments. Only status, diagnosis and prescription change.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := requireRole(actor, entity.RoleDoctor); err != nil {
		return nil, err
	}

	status := entity.AppointmentStatus(req.Status)
	if !status.IsOutcome() {
		return nil, ErrInvalidStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByUserID(ctx, tx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorProfileMissing
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctor.ID {
		return nil, ErrAppointmentNotOwned
	}

	oldValue := converter.AppointmentToResponse(appointment)

	appointment.Status = status
	if diagnosis := strings.TrimSpace(req.Diagnosis); diagnosis != "" {
		appointment.Diagnosis = &diagnosis
	}
	if prescription := strings.TrimSpace(req.Prescription); prescription != "" {
		appointment.Prescription = &prescription
	}

	if err := u.appointmentRepo.UpdateOutcome(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentUpdate, "appointment", appointment.ID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// ListDoctorAppointments returns the acting doctor's appointments, earliest first.
func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if err := requireRole(actor, entity.RoleDoctor); err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorProfileMissing
	}

	appointments, err := u.appointmentRepo.FindByDoctorID(ctx, u.db, doctor.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctor.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if err := requireRole(actor, entity.RolePatient); err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientProfileMissing
	}

	appointments, err := u.appointmentRepo.FindByPatientID(ctx, u.db, patient.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patient.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}
