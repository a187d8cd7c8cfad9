package service

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/hash"
	"effisense-go/pkg/log"
	"effisense-go/pkg/token"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Simulation interval bounds, in seconds.
const (
	MinSimulationInterval = 1
	MaxSimulationInterval = 3600
)

// UserService covers accounts, sessions and the per-user simulation settings.
type UserService interface {
	Register(username, email, password string) (*model.User, error)
	Login(username, password string) (string, *model.User, error)
	Logout(ctx context.Context, tokenString string) error
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	GetByID(userID uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	EnsureAdmin(cfg config.AdminConfig) error
	ToggleSimulation(userID uint, enable bool, interval int) error
	UpdateSimulationInterval(userID uint, interval int) error
}

type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	jwtManager *token.JWTManager
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist, jwtManager *token.JWTManager) UserService {
	return &userService{userRepo: userRepo, blacklist: blacklist, jwtManager: jwtManager}
}

// Register creates a USER account.
func (s *userService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 1. Uniqueness
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. Hash
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. Store
	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Infow("user registered", "userId", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *userService) Login(username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	tokenString, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return tokenString, user, nil
}

// Logout blacklists the token for the rest of its lifetime.
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		// Already unusable.
		return nil
	}
	ttl := s.jwtManager.TokenDuration()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.blacklist.Revoke(ctx, tokenString, ttl)
}

// Authenticate resolves a session token to its user.
func (s *userService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	revoked, err := s.blacklist.IsRevoked(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "find user")
	}
	return user, nil
}

func (s *userService) GetByUsername(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, notFoundOr(err, "find user")
	}
	return user, nil
}

// EnsureAdmin creates the configured administrator if it does not exist yet.
func (s *userService) EnsureAdmin(cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}
	if _, err := s.userRepo.FindByUsername(cfg.Username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := hash.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	email := cfg.Email
	if email == "" {
		email = cfg.Username + "@localhost"
	}
	admin := &model.User{Username: cfg.Username, Email: email, Password: hashedPassword, Role: model.RoleAdmin}
	if err := s.userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Infof("admin account '%s' created", cfg.Username)
	return nil
}

func validateInterval(interval int) error {
	if interval < MinSimulationInterval || interval > MaxSimulationInterval {
		return NewValidationError("interval", fmt.Sprintf("Interval must be between %d and %d seconds.", MinSimulationInterval, MaxSimulationInterval))
	}
	return nil
}

// ToggleSimulation sets both simulation fields. Enabling requires a valid interval;
// when disabling, an out-of-range interval keeps the stored one.
func (s *userService) ToggleSimulation(userID uint, enable bool, interval int) error {
	if err := validateInterval(interval); err != nil {
		if enable {
			return err
		}
		user, findErr := s.GetByID(userID)
		if findErr != nil {
			return findErr
		}
		interval = user.SelectedSimulationInterval
	}
	if err := s.userRepo.UpdateSimulation(userID, enable, interval); err != nil {
		return notFoundOr(err, "update simulation")
	}
	log.Infow("simulation toggled", "userId", userID, "enabled", enable, "interval", interval)
	return nil
}

func (s *userService) UpdateSimulationInterval(userID uint, interval int) error {
	if err := validateInterval(interval); err != nil {
		return err
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateSimulation(userID, user.IsSimulationEnabled, interval); err != nil {
		return notFoundOr(err, "update simulation")
	}
	return nil
}
