package handler

import (
	"encoding/json"
	"net/http"

	"hospital-management/internal/delivery/dto"
	"hospital-management/internal/usecase"
	"hospital-management/pkg/response"
	"hospital-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase   usecase.PatientUsecase
	lifecycleUsecase usecase.LifecycleUsecase
	validator        *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, lifecycleUsecase usecase.LifecycleUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase:   patientUsecase,
		lifecycleUsecase: lifecycleUsecase,
		validator:        validator,
	}
}

// ListPatients handles listing all patients (admin only)
// @Router /admin/patients [get]
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	patients, err := h.patientUsecase.ListPatients(r.Context(), actor)
	if err != nil {
		respondError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// DeletePatient handles deleting a patient with its account and appointments (admin only)
// @Router /admin/patients/{id} [delete]
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	patientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	if err := h.lifecycleUsecase.DeletePatient(r.Context(), actor, patientID); err != nil {
		respondError(w, err, "Failed to delete patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted successfully", nil)
}

// DeleteUser handles deleting any user account (admin only)
// @Router /admin/users/{id} [delete]
func (h *PatientHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	if err := h.lifecycleUsecase.DeleteUser(r.Context(), actor, userID); err != nil {
		respondError(w, err, "Failed to delete user")
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

// GetMyProfile handles getting the logged-in patient's profile
// @Router /patient/profile [get]
func (h *PatientHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := h.patientUsecase.GetMyProfile(r.Context(), actor)
	if err != nil {
		respondError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateMyProfile handles updating the logged-in patient's profile
// @Router /patient/profile [put]
func (h *PatientHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdatePatientProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.patientUsecase.UpdateMyProfile(r.Context(), actor, &req)
	if err != nil {
		respondError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}
