package usecase

import (
	"errors"
	"fmt"
	"strings"

	"hospital-management/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error categories. Every error a usecase returns on purpose wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDoubleBooking = errors.New("double booking")
	ErrNotFound      = errors.New("not found")
	ErrIntegrity     = errors.New("integrity error")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

var (
	// Auth
	ErrUsernameExists     = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)

	// Booking and status update
	ErrInvalidDateTime       = fmt.Errorf("%w: date and time must use the format YYYY-MM-DD HH:MM", ErrInvalidInput)
	ErrInvalidStatus         = fmt.Errorf("%w: status must be Completed or Cancelled", ErrInvalidInput)
	ErrDoctorNotFound        = fmt.Errorf("%w: doctor not found", ErrNotFound)
	ErrPatientNotFound       = fmt.Errorf("%w: patient not found", ErrNotFound)
	ErrAppointmentNotFound   = fmt.Errorf("%w: appointment not found", ErrNotFound)
	ErrAppointmentNotOwned   = fmt.Errorf("%w: appointment belongs to another doctor", ErrForbidden)
	ErrSlotTaken             = fmt.Errorf("%w: doctor already has an appointment at this time", ErrDoubleBooking)
	ErrSlotBusy              = fmt.Errorf("%w: another booking for this slot is in progress", ErrDoubleBooking)
	ErrPatientProfileMissing = fmt.Errorf("%w: patient profile missing for user", ErrIntegrity)
	ErrDoctorProfileMissing  = fmt.Errorf("%w: doctor profile missing for user", ErrIntegrity)

	// Lifecycle
	ErrOwningUserMissing = fmt.Errorf("%w: owning user missing for profile", ErrIntegrity)
	ErrCannotDeleteSelf  = fmt.Errorf("%w: cannot delete your own account", ErrForbidden)

	// Directory
	ErrInvalidConsultationFee = fmt.Errorf("%w: consultation fee must not be negative", ErrInvalidInput)
	ErrAuditLogNotFound       = fmt.Errorf("%w: audit log not found", ErrNotFound)
)

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// requireRole returns ErrForbidden unless the actor is authenticated with role.
func requireRole(actor entity.Actor, role entity.Role) error {
	if !actor.Is(role) {
		return fmt.Errorf("%w: %s role required", ErrForbidden, role)
	}
	return nil
}
