package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mominaamjad/pixel-notes/internal/auth"
	"github.com/mominaamjad/pixel-notes/internal/core"
	"github.com/mominaamjad/pixel-notes/internal/middleware"
)

// Service is the credential store backing the auth flows. It satisfies
// auth.UserProvider and middleware.UserResolver.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	name, email, passwordHash string,
) (*auth.UserInfo, error) {
	normalized := normalizeEmail(email)

	// The unique index still catches a concurrent insert.
	exists, err := s.repo.ExistsByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.ErrDuplicateKey
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        normalized,
		PasswordHash: passwordHash,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByResetTokenHash(
	ctx context.Context,
	tokenHash string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) SetResetChallenge(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetChallenge(ctx, userID, tokenHash, expiresAt)
}

func (s *Service) ClearResetChallenge(
	ctx context.Context,
	userID string,
) error {
	return s.repo.ClearResetChallenge(ctx, userID)
}

// ResolveUser loads the current user state for request authentication.
func (s *Service) ResolveUser(
	ctx context.Context,
	userID string,
) (*middleware.AuthUser, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &middleware.AuthUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordChangedAt: u.PasswordChangedAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Status:            u.Status,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
