package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oklog/ulid/v2"

	"livetimer-echo/internal/auth"
	"livetimer-echo/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	q *repository.Queries
}

func NewUserService(q *repository.Queries) *UserService { return &UserService{q: q} }

func (s *UserService) Register(ctx context.Context, email, name, password string) (repository.User, error) {
	if email == "" || password == "" {
		return repository.User{}, errors.New("email and password are required")
	}
	if name == "" {
		name = email
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return repository.User{}, err
	}

	return s.q.CreateUser(ctx, repository.CreateUserParams{
		ID:       ulid.Make().String(),
		Email:    email,
		Name:     name,
		Password: hashed,
	})
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (repository.User, error) {
	if email == "" || password == "" {
		return repository.User{}, ErrInvalidCredentials
	}
	user, err := s.q.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return repository.User{}, err
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return repository.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (repository.User, error) {
	user, err := s.q.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.User{}, ErrNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id, name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	return s.q.UpdateUserProfile(ctx, id, name)
}
