package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los servicios los envuelven con un mensaje legible: fmt.Errorf("%w: userId no existe", ErrInvalidReference).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidReference     = errors.New("referencia inexistente")
	ErrReadOnlyField        = errors.New("campo de solo lectura")
	ErrReservationOpen      = errors.New("reservación abierta")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInUse                = errors.New("no se puede eliminar: está en uso")
	ErrMissingReferenceData = errors.New("datos de referencia no configurados")
)
