package converter

import (
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Role profiles are included when they were preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = DoctorToResponse(user.DoctorProfile)
	}
	if user.PatientProfile != nil {
		response.PatientProfile = PatientToResponse(user.PatientProfile)
	}

	return response
}
