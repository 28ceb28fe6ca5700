package entity

// Patch representa un campo de una actualización parcial: Set indica que el campo
// vino en el request (aunque su valor sea cero o nil); si Set es false la columna no se toca.
type Patch[T any] struct {
	Set   bool
	Value T
}

// SetTo construye un Patch marcado con el valor dado.
func SetTo[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: v}
}
