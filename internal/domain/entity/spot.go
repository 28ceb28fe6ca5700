package entity

// Spot lugar de estacionamiento de una empresa con un estado de ocupación mutable.
type Spot struct {
	ID          int64
	CompanyID   int64
	StateID     int64
	Name        string
	Description *string

	CompanyName string
	CompanyCode string
	StateName   string
}

// SpotPatch campos actualizables de un lugar.
type SpotPatch struct {
	CompanyID   Patch[int64]
	StateID     Patch[int64]
	Name        Patch[string]
	Description Patch[*string]
}

// Empty indica que el patch no modifica ninguna columna.
func (p SpotPatch) Empty() bool {
	return !p.CompanyID.Set && !p.StateID.Set && !p.Name.Set && !p.Description.Set
}
