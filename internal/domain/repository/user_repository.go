package repository

import (
	"context"

	"hospital-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*entity.User, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByIDWithProfiles(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error)
	ExistsByRole(ctx context.Context, db *gorm.DB, role entity.Role) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
