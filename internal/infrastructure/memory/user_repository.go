package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo directorio de usuarios en memoria. La gestión de usuarios vive fuera de este servicio;
// Add sirve para sembrar clientes y operadores.
type UserRepo struct {
	mu   sync.RWMutex
	byID map[string]*entity.User
}

// NewUserRepository construye el directorio con los usuarios dados.
func NewUserRepository(users ...*entity.User) *UserRepo {
	r := &UserRepo{byID: make(map[string]*entity.User)}
	for _, u := range users {
		r.Add(u)
	}
	return r
}

// Add inserta o reemplaza un usuario.
func (r *UserRepo) Add(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *u
	r.byID[c.ID] = &c
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}
