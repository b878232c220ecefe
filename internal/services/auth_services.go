package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/model"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingOTPFields   = errors.New("email and OTP code are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrEmailDelivery      = errors.New("failed to send verification email")
)

// UserStore is the credential store contract the auth flow consumes.
// Implemented by repository.UserRepository against the document store.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	SetOTP(ctx context.Context, id, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	Users     UserStore
	Mailer    EmailSender
	Validator EmailValidator
	Tokens    *middleware.JWTManager
}

func NewAuthService(users UserStore, mailer EmailSender, validator EmailValidator, tokens *middleware.JWTManager) *AuthService {
	return &AuthService{Users: users, Mailer: mailer, Validator: validator, Tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified customer account and emails it a fresh
// OTP. If the email cannot be dispatched the account is deleted again —
// an unverified account with no way to obtain its code is unreachable.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	if s.Validator != nil {
		if err := s.Validator.Validate(ctx, email); err != nil {
			return "", err
		}
	}

	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return "", model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	expiry := OTPExpiry()

	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
		IsVerified:   false,
		OTPCode:      &code,
		OTPExpiry:    &expiry,
		CreatedAt:    time.Now(),
	}

	// Concurrent registrations race at the store's unique index; the
	// loser surfaces as ErrEmailTaken here.
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		return "", err
	}

	if err := s.Mailer.SendOTPEmail(ctx, email, code); err != nil {
		// Compensating delete, then report the delivery failure.
		if delErr := s.Users.Delete(ctx, id); delErr != nil {
			slog.Error("compensating delete failed", "userId", id, "error", delErr)
		}
		return "", ErrEmailDelivery
	}

	return id, nil
}

// VerifyOTP checks the submitted code, marks the account verified and
// issues a session token. Expired codes are reported as expired even
// when the digits match.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, "", ErrMissingOTPFields
	}

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u.IsVerified {
		return nil, "", ErrAlreadyVerified
	}
	if u.OTPCode == nil || u.OTPExpiry == nil {
		return nil, "", ErrOTPInvalid
	}
	if err := CheckOTP(code, *u.OTPCode, *u.OTPExpiry); err != nil {
		return nil, "", err
	}

	if err := s.Users.MarkVerified(ctx, u.ID.Hex()); err != nil {
		return nil, "", err
	}

	token, err := s.Tokens.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", err
	}

	u.IsVerified = true
	u.OTPCode = nil
	u.OTPExpiry = nil
	return u, token, nil
}

// ResendOTP overwrites the pending code with a fresh one and mails it.
// The previous code becomes permanently invalid; a delivery failure
// leaves the new code persisted (no rollback), so another resend simply
// overwrites again.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingCredentials
	}

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.Users.SetOTP(ctx, u.ID.Hex(), code, OTPExpiry()); err != nil {
		return err
	}

	if err := s.Mailer.SendOTPEmail(ctx, email, code); err != nil {
		return ErrEmailDelivery
	}
	return nil
}

// Login authenticates a verified account and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.Tokens.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	if err := s.Users.SetLastLogin(ctx, u.ID.Hex(), now); err != nil {
		// Token is already issued; a stale lastLogin is not worth failing
		// the login for.
		slog.Warn("last login update failed", "userId", u.ID.Hex(), "error", err)
	}
	u.LastLogin = &now

	// zero out password hash before returning
	u.PasswordHash = ""
	return u, token, nil
}
