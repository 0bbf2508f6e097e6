package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService resolves bearer tokens to users. Credentials and sign-up live
// outside this service; sessions are issued to users that already exist.
type AuthService interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
	IssueSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*entity.Session, error)
	EnsureUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type authService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAuthService(repo *repository.Repository, log *zap.Logger) AuthService {
	return &authService{
		repo: repo,
		log:  log.With(zap.String("service", "auth")),
	}
}

// Authenticate returns nil without error when the token is unknown, expired
// or revoked.
func (s *authService) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}

	session, err := s.repo.Session.FindValidSession(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (s *authService) IssueSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     uuid.New(),
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// EnsureUser creates user unless one with the same username exists, and
// returns the stored record.
func (s *authService) EnsureUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	existing, err := s.repo.User.FindByUsername(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", user.Username, err)
	}
	if existing != nil {
		return existing, nil
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("user %s: %w", user.Username, ErrConflict)
		}
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}

	s.log.Info("User created", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}
