package repository

import (
	"context"

	"hospital-management/internal/domain/entity"
	domainRepo "hospital-management/internal/domain/repository"

	"gorm.io/gorm"
)

type departmentRepository struct{}

func NewDepartmentRepository() domainRepo.DepartmentRepository {
	return &departmentRepository{}
}

func (r *departmentRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Department, error) {
	var departments []entity.Department
	err := db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) FirstOrCreate(ctx context.Context, db *gorm.DB, name string) (*entity.Department, error) {
	department := entity.Department{Name: name}
	err := db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}
