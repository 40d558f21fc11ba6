package usecase

import (
	"context"
	"fmt"

	"hospital-management/internal/converter"
	"hospital-management/internal/domain/entity"
	"hospital-management/internal/domain/repository"
	"hospital-management/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LifecycleUsecase removes accounts together with everything that hangs off them.
type LifecycleUsecase interface {
	DeleteDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error
	DeletePatient(ctx context.Context, actor entity.Actor, patientID uuid.UUID) error
	DeleteUser(ctx context.Context, actor entity.Actor, userID uuid.UUID) error
}

type lifecycleUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	tokenStore      service.TokenStore
}

func NewLifecycleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	tokenStore service.TokenStore,
) LifecycleUsecase {
	return &lifecycleUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		tokenStore:      tokenStore,
	}
}

func (u *lifecycleUsecase) DeleteDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID) error {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	if doctor.User == nil {
		return fmt.Errorf("%w: doctor %s", ErrOwningUserMissing, doctorID)
	}

	return u.deleteAndCommit(ctx, tx, actor, doctor.User)
}

func (u *lifecycleUsecase) DeletePatient(ctx context.Context, actor entity.Actor, patientID uuid.UUID) error {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(ctx, tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return err
	}
	if patient == nil {
		return ErrPatientNotFound
	}
	if patient.User == nil {
		return fmt.Errorf("%w: patient %s", ErrOwningUserMissing, patientID)
	}

	return u.deleteAndCommit(ctx, tx, actor, patient.User)
}

func (u *lifecycleUsecase) DeleteUser(ctx context.Context, actor entity.Actor, userID uuid.UUID) error {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}
	if userID == actor.UserID {
		return ErrCannotDeleteSelf
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return u.deleteAndCommit(ctx, tx, actor, user)
}

func (u *lifecycleUsecase) deleteAndCommit(ctx context.Context, tx *gorm.DB, actor entity.Actor, user *entity.User) error {
	if user.ID == actor.UserID {
		return ErrCannotDeleteSelf
	}

	removed, err := u.cascadeDeleteUser(ctx, tx, user)
	if err != nil {
		return err
	}

	oldValue := map[string]interface{}{
		"user":         converter.UserToResponse(user),
		"appointments": removed,
	}
	if err := u.auditService.LogDelete(ctx, tx, &actor.UserID, entity.AuditActionUserDelete, "user", user.ID.String(), oldValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	// Outstanding tokens of the deleted user would otherwise stay usable until they expire.
	if err := u.tokenStore.RevokeAll(ctx, user.ID); err != nil {
		u.log.Warnf("Failed to revoke tokens of deleted user %s: %+v", user.ID, err)
	}

	u.log.Infof("User deleted: id=%s, role=%s, appointments=%d", user.ID, user.Role, removed)
	return nil
}

// cascadeDeleteUser removes the user's appointments, then its profiles, then
// the user row. It returns how many appointments were removed.
func (u *lifecycleUsecase) cascadeDeleteUser(ctx context.Context, tx *gorm.DB, user *entity.User) (int64, error) {
	var removed int64

	doctor, err := u.doctorRepo.FindByUserID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile for user %s: %+v", user.ID, err)
		return 0, err
	}
	patient, err := u.patientRepo.FindByUserID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", user.ID, err)
		return 0, err
	}

	if doctor != nil {
		n, err := u.appointmentRepo.DeleteByDoctorID(ctx, tx, doctor.ID)
		if err != nil {
			u.log.Warnf("Failed to delete appointments of doctor %s: %+v", doctor.ID, err)
			return 0, err
		}
		removed += n
	}
	if patient != nil {
		n, err := u.appointmentRepo.DeleteByPatientID(ctx, tx, patient.ID)
		if err != nil {
			u.log.Warnf("Failed to delete appointments of patient %s: %+v", patient.ID, err)
			return 0, err
		}
		removed += n
	}

	if doctor != nil {
		if _, err := u.doctorRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			u.log.Warnf("Failed to delete doctor profile of user %s: %+v", user.ID, err)
			return 0, err
		}
	}
	if patient != nil {
		if _, err := u.patientRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			u.log.Warnf("Failed to delete patient profile of user %s: %+v", user.ID, err)
			return 0, err
		}
	}

	n, err := u.userRepo.Delete(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to delete user %s: %+v", user.ID, err)
		return 0, err
	}
	if n == 0 {
		return 0, ErrUserNotFound
	}

	return removed, nil
}
