package handler

import (
	"errors"
	"net/http"

	"hospital-management/internal/delivery/http/middleware"
	"hospital-management/internal/domain/entity"
	"hospital-management/internal/usecase"
	"hospital-management/pkg/response"
)

// respondError maps a usecase error to its HTTP status by category.
// Errors outside every category become a 500 with the fallback message.
func respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrDoubleBooking), errors.Is(err, usecase.ErrConflict):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrIntegrity):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return actor, ok
}
