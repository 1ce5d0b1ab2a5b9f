package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hornethelper/internal/model"
	"hornethelper/internal/repository"
)

// UserService manages profiles and sign-in
type UserService struct {
	userRepo repository.UserRepo
	authSvc  *AuthService
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepo, authSvc *AuthService) *UserService {
	return &UserService{
		userRepo: userRepo,
		authSvc:  authSvc,
	}
}

// SignIn creates the profile on first sight and returns a token for it
func (s *UserService) SignIn(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := s.authSvc.CheckSigninSecret(req.Secret); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Upsert(ctx, &model.User{
		UID:         req.UID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       req.Email,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := s.authSvc.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.LoginResponse{Token: token, User: user}, nil
}

// Get returns a profile
func (s *UserService) Get(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateMajor sets the user's major to a catalog major or the default
func (s *UserService) UpdateMajor(ctx context.Context, uid, major string) (*model.User, error) {
	major = strings.TrimSpace(major)
	if !model.IsKnownMajor(major) {
		return nil, ErrInvalidMajor
	}

	if err := s.userRepo.UpdateMajor(ctx, uid, major); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update major: %w", err)
	}
	return s.Get(ctx, uid)
}
