package entity

// SpotState estado de ocupación de un lugar ("Libre", "Ocupado").
type SpotState struct {
	ID   int64
	Name string
}

// PaymentState estado de pago de una factura ("Pagado", "Cancelado", ...).
type PaymentState struct {
	ID          int64
	Description string
}

// PaymentMethod forma de pago ("Efectivo", "Tarjeta", ...).
type PaymentMethod struct {
	ID          int64
	Description string
}

// RefKind tablas cuya existencia se valida antes de insertar una factura.
type RefKind int

const (
	RefUser RefKind = iota + 1
	RefClient
	RefReservation
	RefPaymentMethod
	RefPaymentState
)

// Field nombre del campo JSON asociado, usado en los mensajes de error.
func (k RefKind) Field() string {
	switch k {
	case RefUser:
		return "userId"
	case RefClient:
		return "clientId"
	case RefReservation:
		return "reservationId"
	case RefPaymentMethod:
		return "paymentMethodId"
	case RefPaymentState:
		return "paymentStateId"
	default:
		return "id"
	}
}
