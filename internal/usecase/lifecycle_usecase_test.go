package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
	domainRepo "hospital-management/internal/domain/repository"
	"hospital-management/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestDeleteDoctor_CascadesAppointments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	_, keep := env.createDoctor(t, "dr_wilson", "James Wilson")
	alice, _ := env.createPatient(t, "alice", "Alice")
	bob, _ := env.createPatient(t, "bob", "Bob")

	for _, b := range []struct {
		actor    entity.Actor
		doctorID uuid.UUID
		clock    string
	}{
		{alice, doctor.ID, "09:00"},
		{bob, doctor.ID, "09:30"},
		{alice, keep.ID, "09:00"},
	} {
		if _, err := env.appointments.BookAppointment(ctx, b.actor, &dto.BookAppointmentRequest{
			DoctorID: b.doctorID.String(), Date: "2024-06-01", Time: b.clock,
		}); err != nil {
			t.Fatalf("book: %v", err)
		}
	}

	if err := env.tokenStore.Store(ctx, doctorActor.UserID, jwt.AccessToken, "tok", time.Hour); err != nil {
		t.Fatalf("store token: %v", err)
	}

	if err := env.lifecycle.DeleteDoctor(ctx, env.admin, doctor.ID); err != nil {
		t.Fatalf("DeleteDoctor: %v", err)
	}

	if n := env.countAppointments(t, "doctor_id = ?", doctor.ID); n != 0 {
		t.Errorf("appointments of deleted doctor = %d, want 0", n)
	}
	if n := env.countAppointments(t, ""); n != 1 {
		t.Errorf("remaining appointments = %d, want 1", n)
	}

	var doctors, users int64
	env.db.Model(&entity.Doctor{}).Where("id = ?", doctor.ID).Count(&doctors)
	env.db.Model(&entity.User{}).Where("id = ?", doctorActor.UserID).Count(&users)
	if doctors != 0 || users != 0 {
		t.Errorf("doctor rows = %d, user rows = %d, want 0 and 0", doctors, users)
	}

	ok, err := env.tokenStore.Exists(ctx, doctorActor.UserID, jwt.AccessToken, "tok")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("token of deleted doctor still valid")
	}

	if err := env.lifecycle.DeleteDoctor(ctx, env.admin, doctor.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteDoctor error = %v, want ErrNotFound", err)
	}
}

func TestDeleteDoctor_OwningUserMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	alice, _ := env.createPatient(t, "alice", "Alice")

	if _, err := env.appointments.BookAppointment(ctx, alice, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	}); err != nil {
		t.Fatalf("book: %v", err)
	}

	// Orphan the profile behind the constraints' back, then restore enforcement.
	if err := env.db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if err := env.db.Delete(&entity.User{}, "id = ?", doctorActor.UserID).Error; err != nil {
		t.Fatalf("delete user row: %v", err)
	}
	if err := env.db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}

	err := env.lifecycle.DeleteDoctor(ctx, env.admin, doctor.ID)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("error = %v, want ErrIntegrity", err)
	}

	var doctors int64
	env.db.Model(&entity.Doctor{}).Where("id = ?", doctor.ID).Count(&doctors)
	if doctors != 1 {
		t.Errorf("doctor rows = %d, want 1", doctors)
	}
	if n := env.countAppointments(t, ""); n != 1 {
		t.Errorf("appointments = %d, want 1", n)
	}
}

func TestDeletePatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	alice, profile := env.createPatient(t, "alice", "Alice")

	if _, err := env.appointments.BookAppointment(ctx, alice, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	}); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := env.lifecycle.DeletePatient(ctx, alice, profile.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient deleting itself error = %v, want ErrForbidden", err)
	}
	if err := env.lifecycle.DeletePatient(ctx, env.admin, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown patient error = %v, want ErrNotFound", err)
	}

	if err := env.lifecycle.DeletePatient(ctx, env.admin, profile.ID); err != nil {
		t.Fatalf("DeletePatient: %v", err)
	}
	if n := env.countAppointments(t, ""); n != 0 {
		t.Errorf("appointments = %d, want 0", n)
	}

	var doctors int64
	env.db.Model(&entity.Doctor{}).Count(&doctors)
	if doctors != 1 {
		t.Errorf("doctor rows = %d, want 1", doctors)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.lifecycle.DeleteUser(ctx, env.admin, env.admin.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("self delete error = %v, want ErrForbidden", err)
	}
	if err := env.lifecycle.DeleteUser(ctx, env.admin, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user error = %v, want ErrNotFound", err)
	}

	alice, _ := env.createPatient(t, "alice", "Alice")
	if err := env.lifecycle.DeleteUser(ctx, env.admin, alice.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	var patients int64
	env.db.Model(&entity.Patient{}).Count(&patients)
	if patients != 0 {
		t.Errorf("patient rows = %d, want 0", patients)
	}

	logs, err := env.auditLogs.GetAllAuditLogs(ctx, env.admin)
	if err != nil {
		t.Fatalf("GetAllAuditLogs: %v", err)
	}
	found := false
	for _, l := range logs.Logs {
		if l.Action == entity.AuditActionUserDelete {
			found = true
		}
	}
	if !found {
		t.Error("no user.delete audit entry")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	env := newTestEnv(t)

	var enabled int
	if err := env.db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}

	orphan := &entity.Appointment{DoctorID: uuid.New(), PatientID: uuid.New(), DateTime: time.Now().UTC()}
	if err := env.db.Omit("Doctor", "Patient").Create(orphan).Error; err == nil {
		t.Fatal("appointment with unknown doctor and patient was inserted")
	}
}

// failingUserRepository fails the final step of the cascade.
type failingUserRepository struct {
	domainRepo.UserRepository
}

func (r failingUserRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	return 0, fmt.Errorf("delete user %s: connection reset", id)
}

func TestDeleteDoctor_FailedStepRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctorActor, doctor := env.createDoctor(t, "dr_house", "Gregory House")
	alice, _ := env.createPatient(t, "alice", "Alice")

	if _, err := env.appointments.BookAppointment(ctx, alice, &dto.BookAppointmentRequest{
		DoctorID: doctor.ID.String(), Date: "2024-06-01", Time: "09:00",
	}); err != nil {
		t.Fatalf("book: %v", err)
	}

	lifecycle := NewLifecycleUsecase(env.db, env.log, failingUserRepository{env.userRepo}, env.doctorRepo,
		env.patientRepo, env.appointmentRepo, env.auditService, env.tokenStore)

	if err := lifecycle.DeleteDoctor(ctx, env.admin, doctor.ID); err == nil {
		t.Fatal("DeleteDoctor succeeded with a failing user delete")
	}

	var doctors, users int64
	env.db.Model(&entity.Doctor{}).Where("id = ?", doctor.ID).Count(&doctors)
	env.db.Model(&entity.User{}).Where("id = ?", doctorActor.UserID).Count(&users)
	if doctors != 1 || users != 1 {
		t.Errorf("doctor rows = %d, user rows = %d, want 1 and 1", doctors, users)
	}
	if n := env.countAppointments(t, "doctor_id = ?", doctor.ID); n != 1 {
		t.Errorf("appointments = %d, want 1", n)
	}
}
