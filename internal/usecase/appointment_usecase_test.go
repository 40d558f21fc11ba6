package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
	domainRepo "hospital-management/internal/domain/repository"
	"hospital-management/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{"valid", "2024-06-01", "09:00", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), false},
		{"surrounding spaces", " 2024-06-01 ", " 09:30 ", time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), false},
		{"slashes", "2024/06/01", "09:00", time.Time{}, true},
		{"month out of range", "2024-13-01", "09:00", time.Time{}, true},
		{"hour out of range", "2024-06-01", "25:00", time.Time{}, true},
		{"empty time", "2024-06-01", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlot(tt.date, tt.clock)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("ParseSlot() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSlot() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSlot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookAppointment_RejectsDoubleBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	patient, _ := env.createPatient(t, "alice", "Alice")
	other, _ := env.createPatient(t, "bob", "Bob")

	first, err := env.appointments.BookAppointment(ctx, patient, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if first.Status != string(entity.AppointmentStatusBooked) {
		t.Errorf("Status = %q, want Booked", first.Status)
	}
	if first.Date != "2024-06-01" || first.Time != "09:00" {
		t.Errorf("slot = %s %s, want 2024-06-01 09:00", first.Date, first.Time)
	}
	if first.DoctorName != "Gregory House" {
		t.Errorf("DoctorName = %q", first.DoctorName)
	}

	_, err = env.appointments.BookAppointment(ctx, other, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if !errors.Is(err, ErrDoubleBooking) {
		t.Fatalf("second booking error = %v, want ErrDoubleBooking", err)
	}

	if _, err := env.appointments.BookAppointment(ctx, other, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:30",
	}); err != nil {
		t.Fatalf("booking 09:30: %v", err)
	}

	if n := env.countAppointments(t, "doctor_id = ?", doctor.ID); n != 2 {
		t.Errorf("appointments for doctor = %d, want 2", n)
	}
}

func TestBookAppointment_InvalidInputWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")
	patient, _ := env.createPatient(t, "alice", "Alice")

	tests := []struct {
		name string
		req  dto.BookAppointmentRequest
		want error
	}{
		{"malformed date", dto.BookAppointmentRequest{DoctorID: doctor.ID.String(), Date: "01-06-2024", Time: "09:00"}, ErrInvalidInput},
		{"malformed time", dto.BookAppointmentRequest{DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "9am"}, ErrInvalidInput},
		{"unknown doctor", dto.BookAppointmentRequest{DoctorID: uuid.NewString(), Date: "2024-06-01", Time: "09:00"}, ErrNotFound},
		{"doctor id not a uuid", dto.BookAppointmentRequest{DoctorID: "42", Date: "2024-06-01", Time: "09:00"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.appointments.BookAppointment(ctx, patient, &req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if n := env.countAppointments(t, ""); n != 0 {
				t.Errorf("appointments = %d, want 0", n)
			}
		})
	}
}

func TestBookAppointment_RequiresPatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")

	_, err := env.appointments.BookAppointment(ctx, doctorActor, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}

	// A patient account whose profile row is gone cannot book.
	patient, profile := env.createPatient(t, "ghost", "Ghost")
	if err := env.db.Delete(&entity.Patient{}, "id = ?", profile.ID).Error; err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	_, err = env.appointments.BookAppointment(ctx, patient, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if !errors.Is(err, ErrPatientProfileMissing) {
		t.Fatalf("error = %v, want ErrPatientProfileMissing", err)
	}
}

// vanishingDoctorRepository removes the doctor right after the booking's first
// lookup, as a concurrent DeleteDoctor committing at that moment would.
type vanishingDoctorRepository struct {
	domainRepo.DoctorRepository
}

func (r vanishingDoctorRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	doctor, err := r.DoctorRepository.FindByID(ctx, db, id)
	if err != nil || doctor == nil {
		return doctor, err
	}
	if err := db.WithContext(ctx).Delete(&entity.Doctor{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return doctor, nil
}

func TestBookAppointment_DoctorDeletedBeforeLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	patient, _ := env.createPatient(t, "alice", "Alice")

	appointments := NewAppointmentUsecase(env.db, env.log, env.appointmentRepo, vanishingDoctorRepository{env.doctorRepo},
		env.patientRepo, env.auditService, env.slotLocker)

	_, err := appointments.BookAppointment(ctx, patient, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if n := env.countAppointments(t, "doctor_id = ?", doctor.ID); n != 0 {
		t.Errorf("appointments for deleted doctor = %d, want 0", n)
	}
}

func TestBookAppointment_CancelledSlotCanBeRebooked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")
	patient, _ := env.createPatient(t, "alice", "Alice")
	req := &dto.BookAppointmentRequest{DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "10:00"}

	booked, err := env.appointments.BookAppointment(ctx, patient, req)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := env.appointments.UpdateAppointment(ctx, doctorActor, booked.ID, &dto.UpdateAppointmentRequest{
		Status: string(entity.AppointmentStatusCancelled),
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := env.appointments.BookAppointment(ctx, patient, req); err != nil {
		t.Fatalf("rebook cancelled slot: %v", err)
	}
	if n := env.countAppointments(t, "status = ?", entity.AppointmentStatusBooked); n != 1 {
		t.Errorf("booked appointments = %d, want 1", n)
	}
}

func TestBookAppointment_SlotLockHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")
	patient, _ := env.createPatient(t, "alice", "Alice")

	release, err := env.slotLocker.Acquire(ctx, doctor.ID, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	req := &dto.BookAppointmentRequest{DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "11:00"}
	if _, err := env.appointments.BookAppointment(ctx, patient, req); !errors.Is(err, ErrDoubleBooking) {
		t.Fatalf("error = %v, want ErrDoubleBooking", err)
	}
	if n := env.countAppointments(t, ""); n != 0 {
		t.Errorf("appointments = %d, want 0", n)
	}

	release()
	if _, err := env.appointments.BookAppointment(ctx, patient, req); err != nil {
		t.Fatalf("book after release: %v", err)
	}
}

func TestUpdateAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")
	otherDoctor, _ := env.createDoctor(t, "dr_shep", "Derek Shepherd")
	patient, profile := env.createPatient(t, "alice", "Alice")

	booked, err := env.appointments.BookAppointment(ctx, patient, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	t.Run("other doctor is refused", func(t *testing.T) {
		_, err := env.appointments.UpdateAppointment(ctx, otherDoctor, booked.ID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusCompleted),
		})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("patient is refused", func(t *testing.T) {
		_, err := env.appointments.UpdateAppointment(ctx, patient, booked.ID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusCompleted),
		})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("status Booked is refused", func(t *testing.T) {
		_, err := env.appointments.UpdateAppointment(ctx, doctorActor, booked.ID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusBooked),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := env.appointments.UpdateAppointment(ctx, doctorActor, uuid.New(), &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusCompleted),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("completed keeps the slot and parties", func(t *testing.T) {
		got, err := env.appointments.UpdateAppointment(ctx, doctorActor, booked.ID, &dto.UpdateAppointmentRequest{
			Status:       string(entity.AppointmentStatusCompleted),
			Diagnosis:    "Flu",
			Prescription: "Rest",
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Status != string(entity.AppointmentStatusCompleted) {
			t.Errorf("Status = %q", got.Status)
		}

		var stored entity.Appointment
		if err := env.db.First(&stored, "id = ?", booked.ID).Error; err != nil {
			t.Fatalf("load: %v", err)
		}
		if !stored.DateTime.Equal(booked.DateTime) {
			t.Errorf("DateTime = %v, want %v", stored.DateTime, booked.DateTime)
		}
		if stored.DoctorID != doctor.ID || stored.PatientID != profile.ID {
			t.Errorf("parties changed: doctor=%s patient=%s", stored.DoctorID, stored.PatientID)
		}
		if stored.Diagnosis == nil || *stored.Diagnosis != "Flu" {
			t.Errorf("Diagnosis = %v, want Flu", stored.Diagnosis)
		}
	})

	t.Run("empty fields keep stored values", func(t *testing.T) {
		if _, err := env.appointments.UpdateAppointment(ctx, doctorActor, booked.ID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusCancelled),
		}); err != nil {
			t.Fatalf("update: %v", err)
		}

		var stored entity.Appointment
		if err := env.db.First(&stored, "id = ?", booked.ID).Error; err != nil {
			t.Fatalf("load: %v", err)
		}
		if stored.Status != entity.AppointmentStatusCancelled {
			t.Errorf("Status = %q, want Cancelled", stored.Status)
		}
		if stored.Diagnosis == nil || *stored.Diagnosis != "Flu" {
			t.Errorf("Diagnosis = %v, want Flu", stored.Diagnosis)
		}
		if stored.Prescription == nil || *stored.Prescription != "Rest" {
			t.Errorf("Prescription = %v, want Rest", stored.Prescription)
		}
	})
}

func TestListAppointments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_grey", "Meredith Grey")
	alice, _ := env.createPatient(t, "alice", "Alice")
	bob, _ := env.createPatient(t, "bob", "Bob")

	for _, b := range []struct {
		actor entity.Actor
		clock string
	}{{alice, "11:00"}, {bob, "09:00"}, {alice, "10:00"}} {
		if _, err := env.appointments.BookAppointment(ctx, b.actor, &dto.BookAppointmentRequest{
			DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: b.clock,
		}); err != nil {
			t.Fatalf("book %s: %v", b.clock, err)
		}
	}

	mine, err := env.appointments.ListDoctorAppointments(ctx, doctorActor)
	if err != nil {
		t.Fatalf("ListDoctorAppointments: %v", err)
	}
	if mine.Total != 3 {
		t.Fatalf("doctor Total = %d, want 3", mine.Total)
	}
	if mine.Appointments[0].Time != "09:00" || mine.Appointments[2].Time != "11:00" {
		t.Errorf("doctor list not ascending: %s .. %s", mine.Appointments[0].Time, mine.Appointments[2].Time)
	}
	if mine.Appointments[0].PatientName != "Bob" {
		t.Errorf("PatientName = %q, want Bob", mine.Appointments[0].PatientName)
	}

	aliceList, err := env.appointments.ListMyAppointments(ctx, alice)
	if err != nil {
		t.Fatalf("ListMyAppointments: %v", err)
	}
	if aliceList.Total != 2 {
		t.Errorf("patient Total = %d, want 2", aliceList.Total)
	}

	all, err := env.appointments.ListAppointments(ctx, env.admin)
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("admin Total = %d, want 3", all.Total)
	}

	if _, err := env.appointments.ListAppointments(ctx, alice); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient ListAppointments error = %v, want ErrForbidden", err)
	}
}

// brokenAuditService fails every write.
type brokenAuditService struct{}

func (brokenAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, newValue interface{}) error {
	return errors.New("audit_logs: disk full")
}

func (brokenAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	return errors.New("audit_logs: disk full")
}

func (brokenAuditService) LogDelete(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue interface{}) error {
	return errors.New("audit_logs: disk full")
}

var _ service.AuditService = brokenAuditService{}

func TestBookAppointment_AuditFailureIsLogged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	patient, _ := env.createPatient(t, "alice", "Alice")

	log, hook := logtest.NewNullLogger()
	appointments := NewAppointmentUsecase(env.db, log, env.appointmentRepo, env.doctorRepo,
		env.patientRepo, brokenAuditService{}, env.slotLocker)

	if _, err := appointments.BookAppointment(ctx, patient, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	}); err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	if n := env.countAppointments(t, ""); n != 1 {
		t.Errorf("appointments = %d, want 1", n)
	}

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "Failed to create audit log") {
			warned = true
		}
	}
	if !warned {
		t.Error("audit failure was not logged")
	}
}
