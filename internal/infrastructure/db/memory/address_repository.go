package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// AddressRepository keeps addresses keyed by ID.
type AddressRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Address
}

func NewAddressRepository() *AddressRepository {
	return &AddressRepository{byID: make(map[string]*domain.Address)}
}

func (r *AddressRepository) Create(_ context.Context, a *domain.Address) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *a
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *AddressRepository) Update(_ context.Context, a *domain.Address) (*domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[a.ID]
	if !ok || existing.AccountID != a.AccountID {
		return nil, domain.ErrAddressNotFound
	}
	stored := *a
	r.byID[a.ID] = &stored
	out := stored
	return &out, nil
}

func (r *AddressRepository) FindByID(_ context.Context, accountID, id string) (*domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok || a.AccountID != accountID {
		return nil, domain.ErrAddressNotFound
	}
	out := *a
	return &out, nil
}

// ListByAccount returns the account's addresses, oldest first.
func (r *AddressRepository) ListByAccount(_ context.Context, accountID string) ([]*domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Address{}
	for _, a := range r.byID {
		if a.AccountID == accountID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AddressRepository) Delete(_ context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.AccountID != accountID {
		return domain.ErrAddressNotFound
	}
	delete(r.byID, id)
	return nil
}
