package entity

import "time"

// Company representa una panadería/tenant del sistema. Toda fila de negocio pertenece a una Company.
type Company struct {
	ID        string
	Name      string
	RUT       string // RUT de la empresa (sin formato)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
