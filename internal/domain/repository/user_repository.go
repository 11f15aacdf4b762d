package repository

import (
	"context"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

// UserRepository puerto de lectura de usuarios (clientes y operadores). GetByID devuelve (nil, nil) si no existe.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
