package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"leadnest/internal/auth/password"
	"leadnest/internal/auth/repository"
	"leadnest/internal/auth/token"
	"leadnest/internal/events"
	"leadnest/platform/apperr"
	"leadnest/platform/config"
	"leadnest/platform/httpkit"
	"leadnest/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email already registered"
	msgTokenInvalid       = "invalid or expired"
	msgTokenExpired       = "expired"
	msgTokenUsed          = "already used"

	// ForgotPasswordMessage is returned for every reset request, known account or not.
	ForgotPasswordMessage = "If an account exists for that email, a reset link has been sent."

	slugAttempts = 3
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type Service struct {
	repo     repository.AuthRepository
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus, log: log, now: time.Now}
}

type SignUpInput struct {
	Name         string
	Email        string
	Password     string
	BusinessName string
}

// SignInResult is what a successful sign-in hands back to the client.
type SignInResult struct {
	AccessToken string
	User        repository.User
	Membership  repository.Membership
}

// Session is the caller's user and default business.
type Session struct {
	User       repository.User
	Membership *repository.Membership
}

// SignUp creates the user, their business and the owner relation.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (repository.Account, error) {
	hash, err := password.Hash(in.Password)
	if err != nil {
		return repository.Account{}, apperr.Internal("auth.signup.hash", err)
	}

	params := repository.CreateAccountParams{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		BusinessName: strings.TrimSpace(in.BusinessName),
		BaseSlug:     Slugify(in.BusinessName),
	}

	var acc repository.Account
	for attempt := 0; attempt < slugAttempts; attempt++ {
		acc, err = s.repo.CreateAccount(ctx, params)
		if !errors.Is(err, repository.ErrSlugTaken) {
			break
		}
	}
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		s.log.AuthEvent("signup", params.Email, false, "email taken")
		return repository.Account{}, apperr.BadRequest(msgEmailTaken)
	case err != nil:
		return repository.Account{}, apperr.Internal("auth.signup", err)
	}

	s.log.AuthEvent("signup", params.Email, true, "")
	s.eventBus.Publish(ctx, events.BusinessCreated{
		BaseEvent:  events.NewBaseEvent(),
		BusinessID: acc.Business.ID,
		OwnerID:    acc.User.ID,
		Name:       acc.Business.Name,
		Slug:       acc.Business.Slug,
	})
	return acc, nil
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (SignInResult, error) {
	email = normalizeEmail(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("signin", email, false, "unknown email")
		return SignInResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return SignInResult{}, apperr.Internal("auth.signin", err)
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("signin", email, false, "bad password")
		return SignInResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	membership, err := s.repo.GetDefaultMembership(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return SignInResult{}, apperr.Internal("auth.signin.membership", err)
	}

	accessToken, err := s.signAccessToken(user.ID, membership)
	if err != nil {
		return SignInResult{}, apperr.Internal("auth.signin.token", err)
	}

	s.log.AuthEvent("signin", email, true, "")
	return SignInResult{AccessToken: accessToken, User: user, Membership: membership}, nil
}

func (s *Service) Session(ctx context.Context, userID uuid.UUID) (Session, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Unauthorized("unauthorized")
	}
	if err != nil {
		return Session{}, apperr.Internal("auth.session", err)
	}

	sess := Session{User: user}
	membership, err := s.repo.GetDefaultMembership(ctx, userID)
	switch {
	case err == nil:
		sess.Membership = &membership
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, apperr.Internal("auth.session.membership", err)
	}
	return sess, nil
}

// ForgotPassword issues a reset token for a known account. Unknown emails
// take the same path to the caller with no side effects.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("password_reset_request", email, false, "unknown email")
		return nil
	}
	if err != nil {
		return apperr.Internal("auth.forgot_password", err)
	}

	resetToken, err := token.GenerateHex(token.ResetTokenBytes)
	if err != nil {
		return apperr.Internal("auth.forgot_password.token", err)
	}

	expiresAt := s.now().Add(s.cfg.GetResetTokenTTL())
	if err := s.repo.ReplaceResetToken(ctx, user.Email, resetToken, expiresAt); err != nil {
		return apperr.Internal("auth.forgot_password.store", err)
	}

	s.log.AuthEvent("password_reset_request", user.Email, true, "")
	s.eventBus.Publish(ctx, events.PasswordResetRequested{
		BaseEvent:  events.NewBaseEvent(),
		Email:      user.Email,
		ResetToken: resetToken,
		ResetURL:   s.buildURL("/reset-password", resetToken),
	})
	return nil
}

// ValidateResetToken returns the email a live token belongs to.
func (s *Service) ValidateResetToken(ctx context.Context, rawToken string) (string, error) {
	tok, err := s.checkResetToken(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return tok.Email, nil
}

// ResetPassword consumes a live token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	tok, err := s.checkResetToken(ctx, rawToken)
	if err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return apperr.Internal("auth.reset_password.hash", err)
	}

	if err := s.repo.ConsumeResetToken(ctx, tok, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenUsed):
			return apperr.BadRequest(msgTokenUsed)
		case errors.Is(err, repository.ErrNotFound):
			return apperr.BadRequest(msgTokenInvalid)
		}
		return apperr.Internal("auth.reset_password", err)
	}

	s.log.AuthEvent("password_reset", tok.Email, true, "")
	return nil
}

// PurgeResetTokens removes used and expired tokens.
func (s *Service) PurgeResetTokens(ctx context.Context) (int64, error) {
	return s.repo.PurgeResetTokens(ctx, s.now())
}

func (s *Service) checkResetToken(ctx context.Context, rawToken string) (repository.ResetToken, error) {
	tok, err := s.repo.GetResetToken(ctx, rawToken)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ResetToken{}, apperr.BadRequest(msgTokenInvalid)
	}
	if err != nil {
		return repository.ResetToken{}, apperr.Internal("auth.reset_token.get", err)
	}

	if !s.now().Before(tok.ExpiresAt) {
		if err := s.repo.DeleteResetToken(ctx, tok.ID); err != nil {
			s.log.DatabaseError("auth.reset_token.delete_expired", err)
		}
		return repository.ResetToken{}, apperr.BadRequest(msgTokenExpired)
	}

	if tok.Used {
		return repository.ResetToken{}, apperr.BadRequest(msgTokenUsed)
	}
	return tok, nil
}

func (s *Service) signAccessToken(userID uuid.UUID, m repository.Membership) (string, error) {
	now := s.now()
	claims := httpkit.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.GetAccessTokenTTL())),
		},
	}
	if m.Business.ID != uuid.Nil {
		claims.BusinessID = m.Business.ID.String()
		claims.BusinessSlug = m.Business.Slug
		claims.Role = m.Role
	}
	return httpkit.SignAccessToken(claims, s.cfg.GetJWTAccessSecret())
}

func (s *Service) buildURL(path string, tokenValue string) string {
	base := strings.TrimRight(s.cfg.GetAppBaseURL(), "/")
	return base + path + "?token=" + tokenValue
}

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "business"
	}
	return slug
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
