package dto

type DepartmentResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}
