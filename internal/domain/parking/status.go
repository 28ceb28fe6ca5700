// Package parking contiene las reglas del ciclo de vida de una reservación:
// estados válidos, transición de cierre y clasificación de estados de pago.
package parking

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Status estado de una reservación. Debe coincidir con el CHECK de la tabla reservations.
type Status string

const (
	StatusReserved  Status = "reserved"
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// InitialStatus estado con el que nace toda reservación.
const InitialStatus = StatusConfirmed

// aliases nombres aceptados en la entrada (incluye los históricos en español).
var aliases = map[string]Status{
	"reserved":   StatusReserved,
	"reservado":  StatusReserved,
	"confirmed":  StatusConfirmed,
	"confirmado": StatusConfirmed,
	"pending":    StatusPending,
	"pendiente":  StatusPending,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
	"cancelado":  StatusCancelled,
	"completed":  StatusCompleted,
	"completado": StatusCompleted,
	"salida":     StatusCompleted,
}

// fold crea un Caser por llamada: cases.Caser guarda estado y no se comparte entre goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ParseStatus normaliza un estado recibido (sin distinguir mayúsculas) a su valor canónico.
func ParseStatus(s string) (Status, bool) {
	st, ok := aliases[fold(s)]
	return st, ok
}

// Valid indica si el valor almacenado es uno de los estados conocidos.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// ForcesOpenExit indica si el estado no admite hora de salida.
func (s Status) ForcesOpenExit() bool {
	return s == StatusPending || s == StatusReserved
}

// IsCancelled compara sin distinguir mayúsculas ni alias.
func IsCancelled(status string) bool {
	st, ok := ParseStatus(status)
	return ok && st == StatusCancelled
}

// CanClose: solo se cierra una reservación confirmada y sin hora de salida.
func CanClose(status string, exit *time.Time) bool {
	st, ok := ParseStatus(status)
	return ok && st == StatusConfirmed && exit == nil
}

// IsCancelledPaymentState indica si la descripción del estado de pago corresponde a una cancelación
// ("Cancelado", "CANCELADA", "cancelled"...).
func IsCancelledPaymentState(description string) bool {
	return strings.HasPrefix(fold(description), "cancel")
}

// SameStateName compara nombres de estados de referencia sin distinguir mayúsculas.
func SameStateName(a, b string) bool {
	return fold(a) == fold(b)
}
