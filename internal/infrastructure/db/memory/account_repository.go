package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

// AccountRepository keeps accounts in maps indexed by ID, username and email.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Account
	byUsername map[string]string
	byEmail    map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[string]*domain.Account),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Groups = append([]string(nil), a.Groups...)
	c.Permissions = append([]string(nil), a.Permissions...)
	return &c
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail[email])
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byUsername[username])
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

// lookup must be called with r.mu held.
func (r *AccountRepository) lookup(id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// Create checks both unique keys and inserts under the same write lock.
func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verr := &domain.ValidationError{}
	if _, ok := r.byUsername[account.Username]; ok {
		verr.Add("username", domain.ErrDuplicateUsername, "this username is already taken, please choose another one")
	}
	if _, ok := r.byEmail[account.Email]; ok {
		verr.Add("email", domain.ErrDuplicateEmail, "an account with this email already exists")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	stored := cloneAccount(account)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[stored.Email] = stored.ID
	return cloneAccount(stored), nil
}

func (r *AccountRepository) UpdateDisplayName(_ context.Context, id, name string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Name = name
	a.UpdatedAt = time.Now().UTC()
	return cloneAccount(a), nil
}

func (r *AccountRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *AccountRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// List applies the same filters as the Mongo repository.
func (r *AccountRepository) List(_ context.Context, f domain.AccountFilter) ([]*domain.Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []*domain.Account
	for _, a := range r.byID {
		if f.Superuser != nil && a.IsSuperuser != *f.Superuser {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Username), search) &&
			!strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		matched = append(matched, cloneAccount(a))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })

	total := int64(len(matched))
	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > len(matched)/limit {
		return []*domain.Account{}, total, nil
	}
	skip := (page - 1) * limit
	if skip > len(matched) {
		return []*domain.Account{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// Put stores an account as-is, bypassing uniqueness checks. Used to seed
// staff accounts.
func (r *AccountRepository) Put(account *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneAccount(account)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[stored.Email] = stored.ID
}
