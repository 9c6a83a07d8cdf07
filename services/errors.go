package services

import "errors"

// Business failures surface user-facing messages; the frontend shows them
// verbatim, so the wording stays in Spanish.
var (
	// NotFound
	ErrTableNotFound       = errors.New("mesa no encontrada")
	ErrVisitNotFound       = errors.New("visita no encontrada")
	ErrReservationNotFound = errors.New("reserva no encontrada")

	// InvalidState
	ErrTableUnavailable = errors.New("la mesa no está disponible")
	ErrVisitClosed      = errors.New("la visita ya fue cerrada")
	ErrNotConfirmed     = errors.New("la reserva ya no está confirmada")

	// ValidationFailed
	ErrTableNameTaken  = errors.New("ya existe una mesa con ese nombre")
	ErrContactRequired = errors.New("se requiere un teléfono o email de contacto")
	ErrUnderage        = errors.New("debes ser mayor de 18 años para registrarte")

	// AuthFailed
	ErrOTPExpired   = errors.New("el código ha expirado, solicita uno nuevo")
	ErrOTPIncorrect = errors.New("código incorrecto")
	ErrBadPasscode  = errors.New("contraseña incorrecta")

	// ExternalServiceUnavailable
	ErrInsightsUnavailable = errors.New("lo siento, tuve un problema al analizar los datos, por favor inténtalo de nuevo")
)
