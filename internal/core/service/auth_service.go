package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
)

// AuthService implements registration, login, and token refresh on top of the
// user store and the token service.
type AuthService struct {
	repo      ports.AuthRepository
	tokens    ports.TokenService
	sequences ports.SequenceService
	audit     ports.AuditSink
	logger    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, tokens ports.TokenService, sequences ports.SequenceService, audit ports.AuditSink, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, sequences: sequences, audit: audit, logger: logger}
}

// Register creates a portal account. Students get a registration number
// allocated before the account is persisted.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        normalizeEmail(input.Email),
		PasswordHash: string(hash),
		Role:         input.Role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if input.Role == domain.RoleStudent {
		alloc, err := s.sequences.Allocate(ctx, ports.ScopeConfig{})
		if err != nil {
			return nil, err
		}
		user.RegistrationNo = alloc.ID
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", created.Email).Str("role", created.Role).Msg("account registered")
	return created, nil
}

// Login verifies the credentials and issues a token pair. Every credential
// failure collapses into ErrInvalidCredentials so the response cannot reveal
// whether the email exists; only a suspended account is reported distinctly,
// since that caller has already proven the password.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, *domain.User, error) {
	if email == "" || password == "" {
		return domain.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordAudit(domain.AuditLoginFailed, email, "unknown email")
			return domain.TokenPair{}, nil, domain.ErrInvalidCredentials
		}
		return domain.TokenPair{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordAudit(domain.AuditLoginFailed, user.Email, "wrong password")
		return domain.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	if user.Status != domain.StatusActive {
		s.recordAudit(domain.AuditLoginFailed, user.Email, "account "+user.Status)
		return domain.TokenPair{}, nil, domain.ErrAccountDisabled
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return domain.TokenPair{}, nil, err
	}

	s.recordAudit(domain.AuditLoginSucceeded, user.Email, "")
	return pair, user, nil
}

// Refresh exchanges a refresh token for a fresh access token.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (domain.TokenPair, error) {
	return s.tokens.Refresh(refreshToken)
}

func (s *AuthService) recordAudit(kind, subject, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuditEvent{Kind: kind, Subject: subject, Detail: detail, At: time.Now().UTC()})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
