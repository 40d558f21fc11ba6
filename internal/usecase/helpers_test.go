package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"hospital-management/config"
	"hospital-management/internal/domain/entity"
	domainRepo "hospital-management/internal/domain/repository"
	"hospital-management/internal/infrastructure/database"
	"hospital-management/internal/repository"
	"hospital-management/internal/service"
	"hospital-management/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every usecase against a private in-memory SQLite database.
type testEnv struct {
	db         *gorm.DB
	tokenStore service.TokenStore
	slotLocker *service.MemorySlotLocker
	jwtService *jwt.JWTService
	log        *logrus.Logger

	userRepo        domainRepo.UserRepository
	doctorRepo      domainRepo.DoctorRepository
	patientRepo     domainRepo.PatientRepository
	appointmentRepo domainRepo.AppointmentRepository
	auditService    service.AuditService

	auth         AuthUsecase
	appointments AppointmentUsecase
	lifecycle    LifecycleUsecase
	doctors      DoctorUsecase
	patients     PatientUsecase
	departments  DepartmentUsecase
	auditLogs    AuditLogUsecase
	seed         SeedUsecase

	admin entity.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes access.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	tokenStore := service.NewMemoryTokenStore()
	slotLocker := service.NewMemorySlotLocker()

	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	departmentRepo := repository.NewDepartmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogRepo)

	env := &testEnv{
		db:         db,
		tokenStore: tokenStore,
		slotLocker: slotLocker,
		jwtService: jwtService,
		log:        log,

		userRepo:        userRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,

		auth:         NewAuthUsecase(db, log, userRepo, patientRepo, auditService, jwtService, tokenStore),
		appointments: NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, patientRepo, auditService, slotLocker),
		lifecycle:    NewLifecycleUsecase(db, log, userRepo, doctorRepo, patientRepo, appointmentRepo, auditService, tokenStore),
		doctors:      NewDoctorUsecase(db, log, userRepo, doctorRepo, auditService),
		patients:     NewPatientUsecase(db, log, patientRepo, auditService),
		departments:  NewDepartmentUsecase(db, log, departmentRepo),
		auditLogs:    NewAuditLogUsecase(db, log, auditLogRepo),
		seed: NewSeedUsecase(db, log, config.SeedConfig{
			AdminUsername: "admin",
			AdminPassword: "admin123",
		}, userRepo, departmentRepo),
	}

	if err := env.seed.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var admin entity.User
	if err := db.Where("role = ?", entity.RoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	env.admin = actorOf(&admin)

	return env
}

func actorOf(user *entity.User) entity.Actor {
	return entity.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
}

// createDoctor inserts a doctor account directly and returns its actor and profile.
func (e *testEnv) createDoctor(t *testing.T, username, name string) (entity.Actor, *entity.Doctor) {
	t.Helper()

	user := &entity.User{Username: username, Password: "x", Role: entity.RoleDoctor}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create doctor user: %v", err)
	}
	doctor := &entity.Doctor{UserID: user.ID, Name: name, Specialization: "General"}
	if err := e.db.Omit("User").Create(doctor).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return actorOf(user), doctor
}

// createPatient inserts a patient account directly and returns its actor and profile.
func (e *testEnv) createPatient(t *testing.T, username, name string) (entity.Actor, *entity.Patient) {
	t.Helper()

	user := &entity.User{Username: username, Password: "x", Role: entity.RolePatient}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create patient user: %v", err)
	}
	patient := &entity.Patient{UserID: user.ID, Name: name}
	if err := e.db.Omit("User").Create(patient).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return actorOf(user), patient
}

func (e *testEnv) countAppointments(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := e.db.Model(&entity.Appointment{})
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	return n
}
