package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_tracker/internal/logger"
	"finance_tracker/internal/model"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/utils"

	"go.uber.org/zap"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	initialAdminEmail string
	now               func() time.Time
}

// NewAuthService creates a new AuthService. An account registered with
// initialAdminEmail becomes the admin.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminEmail string) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		initialAdminEmail: strings.ToLower(strings.TrimSpace(initialAdminEmail)),
		now:               time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error) {
	email = normalizeEmail(email)

	if role == "" {
		role = model.RoleUser
	}
	// Admins cannot self-register.
	if role != model.RoleUser && role != model.RoleAdvisor {
		return nil, "", ErrInvalidRole
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	if s.initialAdminEmail != "" && email == s.initialAdminEmail {
		role = model.RoleAdmin
		logger.Get().Info("registering initial admin account", zap.String("email", email))
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Status:       model.StatusActive,
		CreatedAt:    s.now().UTC(),
	}
	if role == model.RoleAdvisor {
		user.AdvisorProfile = &model.AdvisorProfile{}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		logger.Get().Error("user created but token generation failed", zap.String("user_id", user.ID), zap.Error(err))
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if user.Status == model.StatusSuspended {
		return nil, "", ErrAccountSuspended
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
