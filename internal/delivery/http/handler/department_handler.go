package handler

import (
	"net/http"

	"hospital-management/internal/usecase"
	"hospital-management/pkg/response"
)

type DepartmentHandler struct {
	departmentUsecase usecase.DepartmentUsecase
}

func NewDepartmentHandler(departmentUsecase usecase.DepartmentUsecase) *DepartmentHandler {
	return &DepartmentHandler{departmentUsecase: departmentUsecase}
}

// ListDepartments handles listing all departments
// @Router /departments [get]
func (h *DepartmentHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentUsecase.ListDepartments(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get departments")
		return
	}

	response.Success(w, http.StatusOK, "Departments retrieved successfully", departments)
}
