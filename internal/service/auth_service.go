package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/config"
	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

const minPasswordLength = 8

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// RegisterUser creates a new customer account and opens a session for it.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, domain.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "invalid"
	}
	if len(password) < minPasswordLength {
		details["password"] = "too short"
	}
	if len(details) > 0 {
		return nil, domain.Session{}, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Session{}, apperrors.NewConflict("email already registered", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, domain.Session{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleUser}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.Session{}, apperrors.MapError(err)
	}

	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// Login authenticates any account. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.Session{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
	}
	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// EnsureAdmin creates the configured administrator, or promotes and re-keys an existing account
// with that email. It is a no-op when no admin email is configured.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		return nil, nil
	}
	if len(cfg.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("admin password too short", map[string]any{"min_length": minPasswordLength})
	}
	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.PasswordHash = hash
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("administrator account refreshed", zap.String("user_id", existing.ID))
		return existing, nil
	case apperrors.IsNotFound(err):
		admin := &domain.User{Name: cfg.Name, Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
		if err := s.users.Create(ctx, admin); err != nil {
			return nil, err
		}
		s.logger.Info("administrator account created", zap.String("user_id", admin.ID))
		return admin, nil
	default:
		return nil, err
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
