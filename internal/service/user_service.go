package service

import (
	"context"
	"strings"

	"github.com/parsa-dv/messenger/internal/model"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/repo"
)

type UserService struct {
	users *repo.UserRepo
}

func NewUserService(users *repo.UserRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, email, bio string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return appErr.Validation("Email required")
	}
	if !emailRegex.MatchString(email) {
		return appErr.Validation("Invalid email format")
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing.ID != userID {
		return appErr.Validation("Email already in use")
	}
	if err != nil && !appErr.IsNotFound(err) {
		return err
	}
	return s.users.UpdateProfile(ctx, userID, email, bio)
}

func (s *UserService) UpdatePicture(ctx context.Context, userID int64, path string) error {
	return s.users.UpdatePicture(ctx, userID, path)
}
