package controllers

import (
	"errors"
	"net/http"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrVisitNotFound),
		errors.Is(err, services.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTableUnavailable),
		errors.Is(err, services.ErrVisitClosed),
		errors.Is(err, services.ErrNotConfirmed),
		errors.Is(err, services.ErrTableNameTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrContactRequired),
		errors.Is(err, services.ErrUnderage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrOTPIncorrect),
		errors.Is(err, services.ErrBadPasscode):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInsightsUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, statusFor(err), err)
}
