package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-user-management/app/observability/metrics"
	"github.com/FACorreiaa/go-user-management/config"
	"github.com/FACorreiaa/go-user-management/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	// CreateUser hashes the password and inserts a new record.
	// Fails with types.ErrConflict when the email is already taken.
	CreateUser(ctx context.Context, username, email, password string, role types.Role) (*types.User, error)

	// GetUserByID returns the record or types.ErrNotFound.
	GetUserByID(ctx context.Context, id int) (*types.User, error)

	// UpdateUser applies non-empty username/email changes.
	UpdateUser(ctx context.Context, id int, params types.UpdateUserParams) (*types.User, error)

	// DeleteUser removes the record or fails with types.ErrNotFound.
	DeleteUser(ctx context.Context, id int) error
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger     *slog.Logger
	repo       UserRepo
	bcryptCost int
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, cfg *config.Config, logger *slog.Logger) *UserServiceImpl {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Bcrypt.Cost > 0 {
		cost = cfg.Bcrypt.Cost
	}
	return &UserServiceImpl{
		logger:     logger,
		repo:       repo,
		bcryptCost: cost,
	}
}

// CreateUser enforces email uniqueness, hashes the credential and stores the
// new record. The returned record includes the hash; handlers must not expose it.
func (s *UserServiceImpl) CreateUser(ctx context.Context, username, email, password string, role types.Role) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "CreateUser", trace.WithAttributes(
		attribute.String("user.email", email),
		attribute.String("user.role", string(role)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateUser"), slog.String("email", email))
	l.DebugContext(ctx, "Creating user")

	m := metrics.Get()
	start := time.Now()
	defer func() {
		m.CreateUserRequestsTotal.Add(ctx, 1)
		m.CreateUserDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	// Fast-fail on duplicate email; the repository re-checks atomically on insert.
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		l.WarnContext(ctx, "Email already registered")
		span.SetStatus(codes.Error, "Duplicate email")
		return nil, fmt.Errorf("email %q already registered: %w", email, types.ErrConflict)
	} else if !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to check existing email", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to hash password")
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	newUser, err := s.repo.CreateUser(ctx, username, email, string(hash), role)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert user")
		m.StoreOpErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	m.StoreOpsTotal.Add(ctx, 1)

	l.InfoContext(ctx, "User created successfully", slog.Int("userID", newUser.ID))
	span.SetStatus(codes.Ok, "User created successfully")
	return newUser, nil
}

// GetUserByID retrieves a user record by id.
func (s *UserServiceImpl) GetUserByID(ctx context.Context, id int) (*types.User, error) {
	l := s.logger.With(slog.String("method", "GetUserByID"), slog.Int("userID", id))
	l.DebugContext(ctx, "Fetching user")

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		l.WarnContext(ctx, "Failed to fetch user", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return u, nil
}

// UpdateUser applies the provided changes to an existing record.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int, params types.UpdateUserParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateUser", trace.WithAttributes(
		attribute.Int("user.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateUser"), slog.Int("userID", id))
	l.DebugContext(ctx, "Updating user")

	u, err := s.repo.UpdateUser(ctx, id, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update user")
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	l.InfoContext(ctx, "User updated successfully")
	span.SetStatus(codes.Ok, "User updated successfully")
	return u, nil
}

// DeleteUser removes an existing record.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "DeleteUser", trace.WithAttributes(
		attribute.Int("user.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteUser"), slog.Int("userID", id))
	l.DebugContext(ctx, "Deleting user")

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		l.WarnContext(ctx, "Failed to delete user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete user")
		return fmt.Errorf("error deleting user: %w", err)
	}

	l.InfoContext(ctx, "User deleted successfully")
	span.SetStatus(codes.Ok, "User deleted successfully")
	return nil
}
