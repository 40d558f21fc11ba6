package converter

import (
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
)

func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	response := &dto.PatientResponse{
		ID:      patient.ID,
		UserID:  patient.UserID,
		Name:    patient.Name,
		Age:     patient.Age,
		Contact: patient.Contact,
	}
	if patient.User != nil {
		response.Username = patient.User.Username
	}

	return response
}

func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}
