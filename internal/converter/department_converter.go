package converter

import (
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
)

func DepartmentsToResponses(departments []entity.Department) []dto.DepartmentResponse {
	responses := make([]dto.DepartmentResponse, len(departments))
	for i, department := range departments {
		responses[i] = dto.DepartmentResponse{
			ID:   department.ID,
			Name: department.Name,
		}
	}
	return responses
}
