package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
)

// Register creates a passenger account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     req.Username,
		Email:        req.Email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		Role:         models.RolePassenger,
		Status:       models.UserActive,
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return &u, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	if s.tokens == nil {
		return nil, errors.New("token issuing is not configured")
	}
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}
	if u.Status != models.UserActive {
		return nil, fmt.Errorf("%w: user is inactive", ErrForbidden)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{AccessToken: token, TokenType: "bearer", User: *u}, nil
}
