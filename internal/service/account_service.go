package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/repository"
	"github.com/iliyamo/travel-reservations/internal/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email,
// a wrong password or a disabled account alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AccountStore interface {
	Create(ctx context.Context, fullName, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AccountService registers clients, checks credentials and bootstraps the
// administrator account.
type AccountService struct {
	users AccountStore
	cost  int
	log   *zap.Logger
}

func NewAccountService(users AccountStore, bcryptCost int, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{users: users, cost: bcryptCost, log: log}
}

// Register creates an enabled CLIENT account.
func (s *AccountService) Register(ctx context.Context, fullName, email, password string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, invalidRequest("full name and email are required")
	}
	if err := utils.CheckPassword(password); err != nil {
		return nil, invalidRequest("%s", err.Error())
	}
	id, err := s.users.Create(ctx, fullName, email, password, model.RoleClient, s.cost)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, newError(KindConflict, "email %s is already registered", email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("client registered", zap.Uint64("user_id", id))
	return s.GetUser(ctx, id)
}

// Authenticate returns the enabled user owning email and password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.Enabled || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator unless an account with
// that email already exists.  An empty email disables seeding.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != model.RoleAdmin {
			s.log.Warn("bootstrap admin email belongs to a non-admin account", zap.String("email", email))
		}
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}
	id, err := s.users.Create(ctx, fullName, email, password, model.RoleAdmin, s.cost)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil // another instance seeded it first
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("bootstrap admin created", zap.Uint64("user_id", id), zap.String("email", email))
	return nil
}
