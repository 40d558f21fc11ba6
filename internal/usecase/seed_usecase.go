package usecase

import (
	"context"

	"hospital-management/config"
	"hospital-management/internal/domain/entity"
	"hospital-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedUsecase creates the first administrator and the default departments
// on an empty database. Running it again is a no-op.
type SeedUsecase interface {
	Seed(ctx context.Context) error
}

type seedUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	cfg            config.SeedConfig
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
}

func NewSeedUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.SeedConfig,
	userRepo repository.UserRepository,
	departmentRepo repository.DepartmentRepository,
) SeedUsecase {
	return &seedUsecase{
		db:             db,
		log:            log,
		cfg:            cfg,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
	}
}

func (u *seedUsecase) Seed(ctx context.Context) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hasAdmin, err := u.userRepo.ExistsByRole(ctx, tx, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to check for admin user: %+v", err)
		return err
	}
	if hasAdmin {
		u.log.Info("Admin user exists, skipping seed")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	admin := &entity.User{
		Username: u.cfg.AdminUsername,
		Password: string(hashedPassword),
		Role:     entity.RoleAdmin,
	}
	if err := u.userRepo.Create(ctx, tx, admin); err != nil {
		u.log.Warnf("Failed to create admin user: %+v", err)
		return err
	}

	for _, name := range entity.DefaultDepartments {
		if _, err := u.departmentRepo.FirstOrCreate(ctx, tx, name); err != nil {
			u.log.Warnf("Failed to create department %s: %+v", name, err)
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Seeded admin %q and %d departments", admin.Username, len(entity.DefaultDepartments))
	return nil
}
