package service

import (
	"context"
	"errors"
	"strings"

	"userhub/internal/apperror"
	"userhub/internal/model"
	"userhub/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// Logger is the logging capability the service needs. Both gommon's
// *log.Logger and echo.Logger satisfy it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// UserEvents receives notifications about user lifecycle changes.
// Implementations must not block.
type UserEvents interface {
	UserCreated(u model.User)
}

// 測試可覆寫
var hashPassword = HashPassword

// UserService validates input, hashes credentials and talks to the store.
// It keeps no state between calls.
type UserService struct {
	store     store.UserStore
	events    UserEvents
	log       Logger
	listLimit int
}

func NewUserService(st store.UserStore, events UserEvents, logger Logger, listLimit int) *UserService {
	return &UserService{store: st, events: events, log: logger, listLimit: listLimit}
}

// Get returns a single user; apperror.ErrNotFound when absent.
func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.log.Errorf("get user %d: %v", id, err)
		return nil, apperror.Store("get user", err)
	}
	return u, nil
}

// List returns users newest first, capped at the configured limit.
func (s *UserService) List(ctx context.Context, excludeAdmins bool) ([]model.User, error) {
	users, err := s.store.List(ctx, excludeAdmins, s.listLimit)
	if err != nil {
		s.log.Errorf("list users (exclude_admins=%t): %v", excludeAdmins, err)
		return nil, apperror.Store("list users", err)
	}
	return users, nil
}

// Create validates, hashes the password and inserts the user. Nothing
// reaches the store when validation fails.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = strings.ToLower(in.Email)
	if err := ValidateCreateUser(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Invalid("password must be at most 72 bytes")
		}
		s.log.Errorf("hash password for %q: %v", in.Username, err)
		return nil, apperror.Unexpected("hash password", err)
	}

	u, err := s.store.Insert(ctx, &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateKey) {
			s.log.Warnf("create user %q: %v", in.Username, err)
			return nil, err
		}
		s.log.Errorf("create user %q: %v", in.Username, err)
		return nil, apperror.Store("create user", err)
	}

	s.log.Infof("user %d (%s) created", u.ID, u.Username)
	if s.events != nil {
		s.events.UserCreated(*u)
	}
	return u, nil
}
