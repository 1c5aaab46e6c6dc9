package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/repository"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const dummyPasswordHash = "$2a$12$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthService struct {
	users    repository.UserRepository
	tokens   repository.RefreshTokenRepository
	sessions repository.SessionRepository

	mailer     EmailSender
	hasher     PasswordHasher
	mailTokens MailTokenCodec
	clock      Clock
	config     AuthConfig
	log        *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	sessions repository.SessionRepository,
	mailer EmailSender,
	hasher PasswordHasher,
	mailTokens MailTokenCodec,
	clock Clock,
	config AuthConfig,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		sessions:   sessions,
		mailer:     mailer,
		hasher:     hasher,
		mailTokens: mailTokens,
		clock:      clock,
		config:     config,
		log:        log,
	}
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput, origin string) (*entity.User, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrMissingFields
	}

	email := utils.NormalizeEmail(input.Email)
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil && user.IsValidated {
		return nil, ErrUserExists
	}
	if user != nil {
		// Account exists but was never verified; resend the link.
		s.sendVerificationMail(email, origin)
		return user, nil
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &entity.User{
		Name:     input.Name,
		Email:    email,
		Password: hash,
	})
	if err != nil {
		return nil, err
	}

	s.sendVerificationMail(email, origin)
	return created, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	email, err := s.mailTokens.Decode(token)
	if err != nil {
		return nil, ErrInvalidMailToken
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidMailToken
	}
	if user.IsValidated {
		return nil, ErrAlreadyVerified
	}

	if err := s.users.MarkValidated(ctx, email); err != nil {
		return nil, err
	}
	user.IsValidated = true
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a compare anyway so unknown emails cost the same as bad
		// passwords.
		_ = s.hasher.Verify(dummyPasswordHash, input.Password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.Password, input.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsValidated {
		return nil, ErrEmailNotVerified
	}

	token := &entity.RefreshToken{
		Token:  uuid.NewString(),
		UserID: user.ID,
		Expire: s.now().Add(s.refreshTokenTTL()),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	return &LoginResult{
		Identity:     session.Identity{ID: user.ID, Name: user.Name, Email: user.Email},
		RefreshToken: token,
	}, nil
}

// RefreshSession rotates the presented refresh token. Every failure mode is
// reported as ErrSessionExpired; the caller clears the credential and the
// client learns nothing more.
func (s *AuthService) RefreshSession(ctx context.Context, presented string) (*LoginResult, error) {
	if strings.TrimSpace(presented) == "" {
		return nil, ErrSessionExpired
	}

	next := &entity.RefreshToken{
		Token:  uuid.NewString(),
		Expire: s.now().Add(s.refreshTokenTTL()),
	}
	user, err := s.tokens.Rotate(ctx, presented, next, s.now())
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) && !errors.Is(err, repository.ErrTokenExpired) {
			s.log.WithError(err).Error("refresh token rotation failed")
		}
		return nil, ErrSessionExpired
	}

	return &LoginResult{
		Identity:     session.Identity{ID: user.ID, Name: user.Name, Email: user.Email},
		RefreshToken: next,
	}, nil
}

// Logout drops the presented refresh token. Best-effort: logout must succeed
// from the client's point of view even when the store does not cooperate.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		s.log.WithError(err).Error("refresh token delete failed on logout")
	}
}

// LogoutOthers removes every session and refresh token of the user except the
// pair backing the current request. Both deletes must succeed for the
// operation to count as complete.
func (s *AuthService) LogoutOthers(ctx context.Context, userID int64, keepSID string, keepToken string) error {
	if err := s.sessions.DeleteOtherByUser(ctx, userID, keepSID); err != nil {
		return err
	}
	return s.tokens.DeleteOtherByUser(ctx, userID, keepToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, input ChangePasswordInput) error {
	if strings.TrimSpace(input.OldPassword) == "" || strings.TrimSpace(input.NewPassword) == "" {
		return ErrInvalidData
	}
	if input.NewPassword == input.OldPassword {
		return ErrSamePassword
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidData
	}
	if !s.hasher.Verify(user.Password, input.OldPassword) {
		return ErrWrongOldPassword
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// ForgotPassword always reports success. Whether the account exists is not
// observable from the response, and the mail goes out in the background so
// timing gives nothing away either.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, origin string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}

	normalized := utils.NormalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	s.sendForgotPasswordMail(normalized, origin)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, password string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(password) == "" {
		return ErrInvalidData
	}

	email, err := s.mailTokens.Decode(token)
	if err != nil {
		return ErrInvalidMailToken
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if s.hasher.Verify(user.Password, password) {
		return ErrPasswordReused
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	// Bulk invalidation: nothing issued before the reset may authenticate
	// again.
	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	return s.tokens.DeleteByUser(ctx, user.ID)
}

func (s *AuthService) GetUser(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) sendVerificationMail(email string, origin string) {
	if s.mailer == nil {
		return
	}
	token, err := s.mailTokens.Generate(email)
	if err != nil {
		s.log.WithError(err).Error("verification token generation failed")
		return
	}
	go func() {
		if err := s.mailer.SendVerificationMail(context.Background(), email, origin, token); err != nil {
			s.log.WithError(err).Error("verification mail failed")
		}
	}()
}

func (s *AuthService) sendForgotPasswordMail(email string, origin string) {
	if s.mailer == nil {
		return
	}
	token, err := s.mailTokens.Generate(email)
	if err != nil {
		s.log.WithError(err).Error("reset token generation failed")
		return
	}
	go func() {
		if err := s.mailer.SendForgotPasswordMail(context.Background(), email, origin, token); err != nil {
			s.log.WithError(err).Error("forgot password mail failed")
		}
	}()
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) refreshTokenTTL() time.Duration {
	if s.config.RefreshTokenTTL > 0 {
		return s.config.RefreshTokenTTL
	}
	return 7 * 24 * time.Hour
}
