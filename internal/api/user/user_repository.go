package user

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/FACorreiaa/go-user-management/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserRepo = (*InMemoryUserRepo)(nil)

// UserRepo defines the data access contract for user records.
type UserRepo interface {
	GetUserByID(ctx context.Context, id int) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error)
	UpdateUser(ctx context.Context, id int, params types.UpdateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// InMemoryUserRepo stores user records in a mutex-guarded map. The email
// uniqueness check and the insert happen under one lock, so concurrent
// creates cannot insert two records with the same email. Nothing survives
// process restart.
type InMemoryUserRepo struct {
	logger *slog.Logger

	mu     sync.RWMutex
	users  map[int]*types.User
	nextID int // ids are never reused after deletion
}

// NewInMemoryUserRepo creates an empty in-memory user repository.
func NewInMemoryUserRepo(logger *slog.Logger) *InMemoryUserRepo {
	return &InMemoryUserRepo{
		logger: logger,
		users:  make(map[int]*types.User),
	}
}

// GetUserByID returns the record with the given id or types.ErrNotFound.
func (r *InMemoryUserRepo) GetUserByID(_ context.Context, id int) (*types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail returns the first record with the given email or types.ErrNotFound.
func (r *InMemoryUserRepo) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u := r.findByEmailLocked(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %q: %w", email, types.ErrNotFound)
}

// CreateUser assigns the next id and inserts the record. Returns
// types.ErrConflict when a live record already holds the email.
func (r *InMemoryUserRepo) CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByEmailLocked(email); existing != nil {
		return nil, fmt.Errorf("user %q: %w", email, types.ErrConflict)
	}

	r.nextID++
	u := &types.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	r.users[u.ID] = u

	r.logger.DebugContext(ctx, "User record inserted", slog.Int("userID", u.ID))
	cp := *u
	return &cp, nil
}

// UpdateUser applies non-empty username/email changes to an existing record.
// Email uniqueness is not re-checked on update.
func (r *InMemoryUserRepo) UpdateUser(_ context.Context, id int, params types.UpdateUserParams) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}

	if params.Username != nil && *params.Username != "" {
		u.Username = *params.Username
	}
	if params.Email != nil && *params.Email != "" {
		u.Email = *params.Email
	}

	cp := *u
	return &cp, nil
}

// DeleteUser removes the record with the given id or returns types.ErrNotFound.
func (r *InMemoryUserRepo) DeleteUser(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// findByEmailLocked does a linear scan; callers must hold the lock.
func (r *InMemoryUserRepo) findByEmailLocked(email string) *types.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
