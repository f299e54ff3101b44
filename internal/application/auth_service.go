package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ecommerce-auth/pkg/mailer/templates"
)

// Notifier delivers a rendered HTML message to one address.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// TextNotifier is implemented by notifiers that take a prepared plain-text
// part alongside the HTML body.
type TextNotifier interface {
	SendText(ctx context.Context, to, subject, text, html string) error
}

// AuthOptions holds the link bases and behaviour switches of AuthService.
type AuthOptions struct {
	Brand            mailtpl.Brand
	ActivationURL    string
	ResetPasswordURL string

	// RequireActiveLogin rejects logins for accounts that were never activated.
	RequireActiveLogin bool
	// UniformResetResponse hides whether a reset was requested for a known email.
	UniformResetResponse bool
}

// AuthService runs the account lifecycle: register, activate, login and
// password reset. Each call is a single unit of work with no retries.
type AuthService struct {
	Repo     repo.UserRepository
	Tokens   *TokenService
	Sessions *Service
	Notifier Notifier
	Logger   *logrus.Logger
	Opts     AuthOptions
}

func NewAuthService(repo repo.UserRepository, tokens *TokenService, sessions *Service, notifier Notifier, logger *logrus.Logger, opts AuthOptions) *AuthService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &AuthService{
		Repo:     repo,
		Tokens:   tokens,
		Sessions: sessions,
		Notifier: notifier,
		Logger:   logger,
		Opts:     opts,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginResult struct {
	User   *entity.User
	Tokens TokenPair
}

type ConfirmResetInput struct {
	UserRef         string
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// Register creates a pending account and sends its activation link.
// When the link cannot be sent the account is kept and returned together
// with an error matching ErrDispatch; ResendActivation recovers from that.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	mRegistrations.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	s.index(ctx, u)

	if err := s.sendActivation(ctx, u); err != nil {
		return u, err
	}
	return u, nil
}

// ResendActivation sends a fresh activation link to a pending account.
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.IsActive {
		return ErrAlreadyVerified
	}
	return s.sendActivation(ctx, u)
}

func (s *AuthService) sendActivation(ctx context.Context, u *entity.User) error {
	tok, exp, err := s.Tokens.IssueActivationToken(u)
	if err != nil {
		return err
	}
	sep := "?"
	if strings.Contains(s.Opts.ActivationURL, "?") {
		sep = "&"
	}
	link := s.Opts.ActivationURL + sep + "token=" + url.QueryEscape(tok)
	data := mailtpl.NewActivationData(s.Opts.Brand, u.FullName(), u.Email, link, s.mailOptions(ctx, exp)...)
	return s.notify(ctx, u, mailtpl.Activation, data)
}

// Activate consumes an activation token and flips the account to active.
func (s *AuthService) Activate(ctx context.Context, token string) (*entity.User, error) {
	u, err := s.Tokens.VerifyActivationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	ok, err := s.Repo.SetActive(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !ok {
		// Another request activated the account between verify and update.
		return nil, ErrAlreadyVerified
	}
	u.IsActive = true
	mActivations.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("user activated")
	s.index(ctx, u)
	return u, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Sessions.Authenticate(ctx, email, password)
	if err != nil {
		mLoginsFailed.Add(1)
		return nil, err
	}
	if s.Opts.RequireActiveLogin && !u.IsActive {
		mLoginsFailed.Add(1)
		return nil, ErrAccountNotActive
	}
	pair, err := s.Sessions.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	mLoginsOK.Add(1)
	return &LoginResult{User: u, Tokens: pair}, nil
}

// RequestPasswordReset mails a reset link to a known address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	mResetRequests.Add(1)
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if s.Opts.UniformResetResponse {
			s.Logger.WithField("email", email).Info("password reset requested for unknown email")
			return nil
		}
		return ErrUserNotFound
	}

	tok, exp, err := s.Tokens.IssueResetToken(u)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.Opts.ResetPasswordURL, "/") + "/" + helpers.EncodeUserRef(u.ID) + "/" + tok + "/"
	data := mailtpl.NewPasswordResetData(s.Opts.Brand, u.FullName(), u.Email, link, s.mailOptions(ctx, exp)...)
	return s.notify(ctx, u, mailtpl.PasswordReset, data)
}

// ConfirmPasswordReset sets a new password using a link from
// RequestPasswordReset. The stored hash is untouched on any failure.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ConfirmResetInput) error {
	id, err := helpers.DecodeUserRef(in.UserRef)
	if err != nil {
		return ErrInvalidToken
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	ok, err := s.Tokens.VerifyResetToken(u, in.Token)
	if err != nil || !ok {
		return ErrInvalidToken
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword("password", in.NewPassword); err != nil {
		return err
	}

	if err := s.setPassword(ctx, u, in.NewPassword); err != nil {
		return err
	}
	mResetsCompleted.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("password reset")
	return nil
}

// ChangePassword replaces the password of a signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return ErrInvalidCredentials
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if err := validatePassword("new_password", newPassword); err != nil {
		return err
	}

	if err := s.setPassword(ctx, u, newPassword); err != nil {
		return err
	}
	mPasswordChanges.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("password changed")
	return nil
}

// setPassword stores a new hash and ends the current session. Reset tokens
// issued before this call stop verifying because their key includes the hash.
func (s *AuthService) setPassword(ctx context.Context, u *entity.User, password string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	u.Password = hash
	if s.Sessions != nil {
		if err := s.Sessions.Logout(ctx, u.ID); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("drop session failed")
		}
	}
	return nil
}

func (s *AuthService) mailOptions(ctx context.Context, exp time.Time) []mailtpl.Option {
	meta := requestMeta(ctx)
	return []mailtpl.Option{
		mailtpl.WithExpiresAt(exp),
		mailtpl.WithTime(s.Tokens.now()),
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
	}
}

func (s *AuthService) notify(ctx context.Context, u *entity.User, name string, data mailtpl.EmailData) error {
	subject, text, html, err := mailtpl.Render(name, data)
	if err == nil {
		if tn, ok := s.Notifier.(TextNotifier); ok {
			err = tn.SendText(ctx, u.Email, subject, text, html)
		} else {
			err = s.Notifier.Send(ctx, u.Email, subject, html)
		}
	}
	if err != nil {
		mDispatchFailures.Add(1)
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": name}).Error("notification failed")
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	return nil
}

func (s *AuthService) index(ctx context.Context, u *entity.User) {
	if s.Sessions != nil {
		s.Sessions.IndexUser(ctx, u)
	}
}
