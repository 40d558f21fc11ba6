package repository

import (
	"context"

	"hospital-management/internal/domain/entity"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Department, error)
	FirstOrCreate(ctx context.Context, db *gorm.DB, name string) (*entity.Department, error)
}
