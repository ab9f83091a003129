package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// Seeded administrator account, created at startup when no admin exists.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@taskboard.local"
	SeedAdminPassword = "admin123"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    uuid.UUID
	Username  string
	Role      domain.Role
}

// AuthService manages accounts and sessions.
type AuthService interface {
	// Register creates an account with role user and returns its ID.
	Register(ctx context.Context, username, email, password string) (uuid.UUID, error)

	// Login checks credentials and issues a session token. Unknown emails and
	// wrong passwords fail with the same domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Authenticate verifies a session token. Every failure wraps
	// domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)

	// ListUsers returns every account. Admin only.
	ListUsers(ctx context.Context, actor *auth.Claims) ([]*domain.User, error)

	// DeleteUser removes an account. Admin only; an admin cannot delete
	// their own account.
	DeleteUser(ctx context.Context, actor *auth.Claims, id uuid.UUID) error

	// UpdateUserRole changes an account's role and returns the updated
	// account. Admin only; an admin cannot change their own role.
	UpdateUserRole(ctx context.Context, actor *auth.Claims, id uuid.UUID, role string) (*domain.User, error)

	// SeedAdmin creates the well-known admin account if no admin exists.
	SeedAdmin(ctx context.Context) error
}

type authService struct {
	users  store.UserStore
	tokens auth.JWTService
	hasher auth.PasswordHasher
	logger *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users store.UserStore,
	tokens auth.JWTService,
	hasher auth.PasswordHasher,
	log *slog.Logger,
) AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &authService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: log.With("component", "auth_service"),
	}
}

func (s *authService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Register implements AuthService.
func (s *authService) Register(ctx context.Context, username, email, password string) (uuid.UUID, error) {
	log := s.log(ctx)

	if err := validatePassword(password); err != nil {
		return uuid.Nil, err
	}
	// Validate the user shape before paying for a digest.
	if _, err := domain.NewUser(username, email, "pending"); err != nil {
		return uuid.Nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return uuid.Nil, newAuthError("register", "failed to hash password", err)
	}

	user, err := domain.NewUser(username, email, digest)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email", "email", user.Email)
			return uuid.Nil, fmt.Errorf("%w: email already registered: %w", domain.ErrConflict, err)
		}
		log.Error("failed to save user", "error", err, "email", user.Email)
		return uuid.Nil, newAuthError("register", "failed to save user", err)
	}

	log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user.ID, nil
}

// Login implements AuthService.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := s.log(ctx)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to look up user for login", "error", err)
			return nil, newAuthError("login", "failed to look up user", err)
		}
		// Spend the same digest work as a real comparison.
		_ = s.hasher.Compare(s.dummy(), password)
		log.Debug("login for unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordDigest, password); err != nil {
		log.Debug("login with wrong password", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		return nil, newAuthError("login", "failed to generate token", err)
	}

	log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Authenticate implements AuthService.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, auth.ErrMissingToken)
	}
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return claims, nil
}

// ListUsers implements AuthService.
func (s *authService) ListUsers(ctx context.Context, actor *auth.Claims) ([]*domain.User, error) {
	if err := auth.Authorize(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		s.log(ctx).Error("failed to list users", "error", err)
		return nil, newAuthError("list_users", "failed to list users", err)
	}
	return users, nil
}

// DeleteUser implements AuthService.
func (s *authService) DeleteUser(ctx context.Context, actor *auth.Claims, id uuid.UUID) error {
	if err := auth.Authorize(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if actor.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrForbidden)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		s.log(ctx).Error("failed to delete user", "error", err, "user_id", id)
		return newAuthError("delete_user", "failed to delete user", err)
	}

	s.log(ctx).Info("user deleted", "user_id", id, "actor_id", actor.UserID)
	return nil
}

// UpdateUserRole implements AuthService.
func (s *authService) UpdateUserRole(
	ctx context.Context,
	actor *auth.Claims,
	id uuid.UUID,
	role string,
) (*domain.User, error) {
	if err := auth.Authorize(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if actor.UserID == id {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}

	if err := s.users.UpdateRole(ctx, id, newRole); err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		s.log(ctx).Error("failed to update role", "error", err, "user_id", id)
		return nil, newAuthError("update_role", "failed to update role", err)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		return nil, newAuthError("update_role", "failed to reload user", err)
	}

	s.log(ctx).Info("user role updated", "user_id", id, "role", newRole, "actor_id", actor.UserID)
	return user, nil
}

// SeedAdmin implements AuthService.
func (s *authService) SeedAdmin(ctx context.Context) error {
	log := s.log(ctx)

	count, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return newAuthError("seed_admin", "failed to count admins", err)
	}
	if count > 0 {
		log.Debug("admin account present, skipping seed", "admins", count)
		return nil
	}

	digest, err := s.hasher.Hash(SeedAdminPassword)
	if err != nil {
		return newAuthError("seed_admin", "failed to hash password", err)
	}
	admin, err := domain.NewUser(SeedAdminUsername, SeedAdminEmail, digest)
	if err != nil {
		return newAuthError("seed_admin", "failed to build admin", err)
	}
	admin.Role = domain.RoleAdmin

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Warn("seed admin email already registered, skipping seed", "email", SeedAdminEmail)
			return nil
		}
		return newAuthError("seed_admin", "failed to save admin", err)
	}

	log.Warn("seeded default admin account; change its password",
		"email", SeedAdminEmail,
		"user_id", admin.ID)
	return nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("taskboard-dummy-password")
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}

func validatePassword(password string) error {
	if password == "" {
		return domain.NewValidationError("password", "cannot be empty", nil)
	}
	if len(password) > auth.MaxPasswordBytes {
		return domain.NewValidationError("password",
			fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes), nil)
	}
	return nil
}
