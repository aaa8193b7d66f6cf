package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/storeops/attendance-backend-go/internal/domain/auth"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
	"github.com/storeops/attendance-backend-go/internal/pkg/jwt"
)

type Service struct {
	userRepo   user.UserRepository
	jwtService jwt.Service
}

func NewService(userRepo user.UserRepository, jwtService jwt.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *auth.LoginRequest) (*auth.TokenPairResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// Refresh rotates a valid refresh token into a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPairResponse, error) {
	userID, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	// Rotation: the presented refresh token is spent either way.
	s.jwtService.RevokeToken(refreshToken)

	return s.issueTokens(u)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(_ context.Context, refreshToken string) {
	if refreshToken != "" {
		s.jwtService.RevokeToken(refreshToken)
	}
}

func (s *Service) issueTokens(u user.User) (*auth.TokenPairResponse, error) {
	access, expiresAt, err := s.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role, u.StoreID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	return &auth.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
