package usecase

import (
	"context"
	"strings"

	"hospital-management/internal/converter"
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
	"hospital-management/internal/domain/repository"
	"hospital-management/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PatientUsecase interface {
	ListPatients(ctx context.Context, actor entity.Actor) (*dto.PatientListResponse, error)
	GetMyProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error)
	UpdateMyProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	auditService service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

func (u *patientUsecase) ListPatients(ctx context.Context, actor entity.Actor) (*dto.PatientListResponse, error) {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	patients, err := u.patientRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find all patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

func (u *patientUsecase) GetMyProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error) {
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

	response := converter.PatientToResponse(patient)
	response.Username = actor.Username
	return response, nil
}

// UpdateMyProfile changes the acting patient's own profile. Empty fields keep their stored value.
func (u *patientUsecase) UpdateMyProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error) {
	if err := requireRole(actor, entity.RolePatient); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByUserID(ctx, tx, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientProfileMissing
	}

	oldValue := converter.PatientToResponse(patient)

	if name := strings.TrimSpace(req.Name); name != "" {
		patient.Name = name
	}
	if req.Age != nil {
		age := *req.Age
		patient.Age = &age
	}
	if contact := strings.TrimSpace(req.Contact); contact != "" {
		patient.Contact = contact
	}

	if err := u.patientRepo.Update(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to update patient profile %s: %+v", patient.ID, err)
		return nil, err
	}

	response := converter.PatientToResponse(patient)
	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionProfileUpdate, "patient", patient.ID.String(), oldValue, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	response.Username = actor.Username
	return response, nil
}
