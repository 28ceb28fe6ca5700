package dto

import (
	"bytes"
	"encoding/json"
)

// Optional distingue entre un campo omitido en el JSON (Set=false),
// enviado explícitamente como null (Set=true, Null=true) y enviado con valor.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON solo se invoca cuando la clave está presente en el cuerpo.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr devuelve nil si el valor es null, o un puntero al valor.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Some construye un Optional con valor (útil en tests y en adaptadores).
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null construye un Optional enviado explícitamente como null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}
