package dto

import "time"

// UpdateCompanyRequest entrada para actualizar los datos de la empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	RUT     *string `json:"rut" validate:"omitempty,rut"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

// CompanyResponse configuración visible de la empresa. RUT va formateado (12.345.678-5).
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RUT       string    `json:"rut"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
