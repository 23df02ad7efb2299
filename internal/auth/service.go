package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mominaamjad/pixel-notes/internal/core"
	"github.com/mominaamjad/pixel-notes/internal/mail"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const resetTokenTTL = 10 * time.Minute

// UserInfo is the credential-store view of a user that the auth flows
// operate on.
type UserInfo struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Status            string
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *UserInfo) IsActive() bool {
	return u.Status == "active"
}

// UserProvider is the credential store surface the auth service needs.
// Implemented by user.Service.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByResetTokenHash(
		ctx context.Context,
		tokenHash string,
	) (*UserInfo, error)
	Create(ctx context.Context, name, email, passwordHash string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetChallenge(
		ctx context.Context,
		userID, tokenHash string,
		expiresAt time.Time,
	) error
	ClearResetChallenge(ctx context.Context, userID string) error
}

type Service struct {
	users       UserProvider
	jwt         *JWTManager
	mailer      mail.Sender
	frontendURL string
	logger      *slog.Logger
}

func NewService(
	users UserProvider,
	jwt *JWTManager,
	mailer mail.Sender,
	frontendURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:       users,
		jwt:         jwt,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*AuthResult, error) {
	if req.Password != req.ConfirmPassword {
		return nil, core.ValidationError("passwords do not match")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("new user registered", "email", user.Email)

	return s.createAuthResult(user)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid || !user.IsActive() {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResult(user)
}

// ForgotPassword issues a reset challenge and mails the plaintext token
// as a link. A delivery failure rolls the challenge back so no unusable
// half-issued token is left behind.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("user")
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	tokenHash := core.HashToken(token)

	if err := s.users.SetResetChallenge(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset challenge: %w", err)
	}

	resetURL := fmt.Sprintf("%s/resetPassword/%s", s.frontendURL, token)
	body := fmt.Sprintf(
		"Forgot your password? Submit a new one at %s\n\n"+
			"The link is valid for 10 minutes. If you didn't request a "+
			"password reset, you can safely ignore this email.",
		resetURL,
	)

	if err := s.mailer.Send(ctx, user.Email, "Your password reset token", body); err != nil {
		if clearErr := s.users.ClearResetChallenge(ctx, user.ID); clearErr != nil {
			s.logger.Error("failed to roll back reset challenge",
				"user_id", user.ID,
				"error", clearErr,
			)
		}
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.Info("password reset challenge issued", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset challenge. The stored hash is cleared
// by the password update, so a token can never be replayed.
func (s *Service) ResetPassword(
	ctx context.Context,
	token string,
	req ResetPasswordRequest,
) (*AuthResult, error) {
	if req.Password != req.ConfirmPassword {
		return nil, core.ValidationError("passwords do not match")
	}

	user, err := s.users.GetByResetTokenHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("get user by reset token: %w", err)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)

	return s.createAuthResult(user)
}

// ChangePassword rotates the password for an authenticated caller. Old
// bearer tokens die with the password_changed_at stamp.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) (*AuthResult, error) {
	if req.NewPassword != req.ConfirmNewPassword {
		return nil, core.ValidationError("passwords do not match")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		req.CurrentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	return s.createAuthResult(user)
}

func (s *Service) Profile(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResult(user *UserInfo) (*AuthResult, error) {
	token, err := s.jwt.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}
