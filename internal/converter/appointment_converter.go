package converter

import (
	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Doctor and patient names are filled in when the relations were preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	at := appointment.DateTime.UTC()
	response := &dto.AppointmentResponse{
		ID:           appointment.ID,
		DoctorID:     appointment.DoctorID,
		PatientID:    appointment.PatientID,
		DateTime:     at,
		Date:         at.Format("2006-01-02"),
		Time:         at.Format("15:04"),
		Status:       string(appointment.Status),
		Diagnosis:    appointment.Diagnosis,
		Prescription: appointment.Prescription,
		CreatedAt:    appointment.CreatedAt,
		UpdatedAt:    appointment.UpdatedAt,
	}

	if appointment.Doctor != nil {
		response.DoctorName = appointment.Doctor.Name
	}
	if appointment.Patient != nil {
		response.PatientName = appointment.Patient.Name
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
