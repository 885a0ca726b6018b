package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/shared"
)

// Enqueuer pushes transactional email jobs onto the background queue.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// Auditor records security-relevant actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps account business rules: registration, login and the
// admin-facing user management operations.
type Service struct {
	repo    Repository
	issuer  *TokenIssuer
	revoker *RedisRevoker
	audit   Auditor
	mailer  Enqueuer
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, issuer *TokenIssuer, revoker *RedisRevoker, audit Auditor, mailer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, revoker: revoker, audit: audit, mailer: mailer, logger: logger}
}

// Register creates a new active user account with the user role.
func (s *Service) Register(ctx context.Context, fullname, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		IsActive:     true,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.recordAudit(ctx, id, "user.register", strconv.FormatInt(id, 10), nil)
	if s.mailer != nil {
		if err := s.mailer.EnqueueEmail(ctx, email, "Welcome to TaskHive", welcomeBody(fullname)); err != nil && s.logger != nil {
			s.logger.Warn("enqueue welcome email", slog.Any("error", err))
		}
	}
	return user, nil
}

// Login validates credentials and issues a signed bearer token. Unknown
// accounts, wrong passwords and deactivated accounts all collapse into
// the same rejection so the response leaks nothing.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive || user.Role == RoleDisabled {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", err
	}
	s.recordAudit(ctx, user.ID, "user.login", strconv.FormatInt(user.ID, 10), nil)
	return user, token, nil
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// GetUser fetches one account.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateUser applies a partial update to an account. A password change is
// re-hashed; a role change to disabled also revokes outstanding tokens.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, req UpdateUserRequest) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Fullname != nil {
		user.Fullname = *req.Fullname
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != nil {
		role, err := ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if user.Role == RoleDisabled || (req.IsActive != nil && !*req.IsActive) {
		s.revokeTokens(ctx, id)
	}
	s.recordAudit(ctx, actorID, "user.update", strconv.FormatInt(id, 10), map[string]any{"role": user.Role})
	return user, nil
}

// DeactivateUser marks the account inactive and revokes its outstanding
// tokens so the change takes effect before they expire.
func (s *Service) DeactivateUser(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	s.recordAudit(ctx, actorID, "user.deactivate", strconv.FormatInt(id, 10), nil)
	return nil
}

func (s *Service) revokeTokens(ctx context.Context, userID int64) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.Revoke(ctx, userID, time.Now()); err != nil && s.logger != nil {
		s.logger.Error("revoke tokens", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func welcomeBody(fullname string) string {
	return fmt.Sprintf("Hi %s,\n\nYour TaskHive account is ready. Log in to start organising your tasks.\n", fullname)
}
