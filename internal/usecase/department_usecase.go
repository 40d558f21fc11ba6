package usecase

import (
	"context"

	"hospital-management/internal/converter"
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DepartmentUsecase interface {
	ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error)
}

type departmentUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	departmentRepo repository.DepartmentRepository
}

func NewDepartmentUsecase(db *gorm.DB, log *logrus.Logger, departmentRepo repository.DepartmentRepository) DepartmentUsecase {
	return &departmentUsecase{
		db:             db,
		log:            log,
		departmentRepo: departmentRepo,
	}
}

func (u *departmentUsecase) ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error) {
	departments, err := u.departmentRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find all departments: %+v", err)
		return nil, err
	}

	return &dto.DepartmentListResponse{
		Departments: converter.DepartmentsToResponses(departments),
		Total:       len(departments),
	}, nil
}
