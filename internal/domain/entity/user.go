package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleCustomer = "customer"
)

// Estados de cuenta.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema: cliente que hace pedidos u operador del almacén.
// Los datos de contacto sirven como dirección de despacho por defecto.
type User struct {
	ID         string
	Email      string
	Name       string
	Role       string // admin, operator, customer
	Status     string // active, inactive
	Address    string
	City       string
	PostalCode string
	Country    string
	Phone      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultShipping devuelve los datos de contacto del usuario como información de despacho.
func (u *User) DefaultShipping() ShippingInfo {
	return ShippingInfo{
		Address:    u.Address,
		City:       u.City,
		PostalCode: u.PostalCode,
		Country:    u.Country,
		Phone:      u.Phone,
	}
}
