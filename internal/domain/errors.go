package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrValidation         = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Flujo de invitaciones.
	ErrQuotaExceeded   = errors.New("capacidad de personal agotada")
	ErrInvalidCode     = errors.New("código de invitación inválido o usado")
	ErrAlreadyConsumed = errors.New("la invitación ya fue procesada")
	ErrDuplicateInvite = errors.New("el usuario ya tiene una invitación pendiente o pertenece a una empresa")
	ErrOwnerNotFound   = errors.New("propietario de la empresa no encontrado")

	// ErrUnavailable fallo de transporte/conectividad; el cliente puede reintentar.
	ErrUnavailable = errors.New("servicio no disponible, reintente")
)

// ValidationError detalla qué campo falló. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
