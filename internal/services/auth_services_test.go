package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryUserStore is an in-memory UserStore for exercising the auth flow
// without a running document store.
type memoryUserStore struct {
	users map[string]*model.User // keyed by hex id
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]*model.User{}}
}

func (m *memoryUserStore) Create(ctx context.Context, u *model.User) (string, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return "", model.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users[u.ID.Hex()] = &cp
	return u.ID.Hex(), nil
}

func (m *memoryUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (m *memoryUserStore) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.OTPCode = &code
	u.OTPExpiry = &expiry
	return nil
}

func (m *memoryUserStore) MarkVerified(ctx context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsVerified = true
	u.OTPCode = nil
	u.OTPExpiry = nil
	return nil
}

func (m *memoryUserStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *memoryUserStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type stubMailer struct {
	sent []string // codes in send order
	fail bool
}

func (s *stubMailer) SendOTPEmail(ctx context.Context, toEmail, otpCode string) error {
	if s.fail {
		return errors.New("mail provider down")
	}
	s.sent = append(s.sent, otpCode)
	return nil
}

func newTestAuthService(store *memoryUserStore, mailer *stubMailer) *AuthService {
	return NewAuthService(store, mailer, nil, middleware.NewJWTManager("test-secret"))
}

func TestRegisterCreatesUnverifiedWithOTP(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)

	id, err := svc.Register(context.Background(), "Bob@X.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == "" {
		t.Fatal("expected a user id")
	}

	u := store.users[id]
	if u == nil {
		t.Fatal("user not persisted")
	}
	if u.Email != "bob@x.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.IsVerified {
		t.Fatal("new account must start unverified")
	}
	if u.Role != model.RoleCustomer {
		t.Fatalf("expected customer role, got %q", u.Role)
	}
	if u.OTPCode == nil || u.OTPExpiry == nil {
		t.Fatal("expected OTP code and expiry to be set")
	}
	if u.OTPExpiry.After(time.Now().Add(10*time.Minute + time.Second)) {
		t.Fatalf("expiry too far out: %v", u.OTPExpiry)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != *u.OTPCode {
		t.Fatalf("mailed code does not match stored code")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMemoryUserStore(), &stubMailer{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pw"); err != ErrMissingCredentials {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, "bob@x.com", ""); err != ErrMissingCredentials {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, "not-an-email", "pw"); err != ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newMemoryUserStore(), &stubMailer{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@x.com", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob@x.com", "other"); !errors.Is(err, model.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	// case-insensitive duplicate
	if _, err := svc.Register(ctx, "BOB@X.COM", "other"); !errors.Is(err, model.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for upper-cased email, got %v", err)
	}
}

func TestRegisterDeliveryFailureDeletesAccount(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestAuthService(store, &stubMailer{fail: true})

	_, err := svc.Register(context.Background(), "bob@x.com", "secret1")
	if !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}
	if len(store.users) != 0 {
		t.Fatal("account must be deleted when the OTP email cannot be sent")
	}

	// the address is free to register again afterwards
	mailer := &stubMailer{}
	svc.Mailer = mailer
	if _, err := svc.Register(context.Background(), "bob@x.com", "secret1"); err != nil {
		t.Fatalf("re-register after delivery failure: %v", err)
	}
}

func TestVerifyOTPHappyPath(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	id, err := svc.Register(ctx, "bob@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, token, err := svc.VerifyOTP(ctx, "bob@x.com", mailer.sent[0])
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if !u.IsVerified {
		t.Fatal("returned user must be verified")
	}

	stored := store.users[id]
	if !stored.IsVerified || stored.OTPCode != nil || stored.OTPExpiry != nil {
		t.Fatal("verification must clear the stored OTP")
	}

	// second verification attempt is rejected
	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", mailer.sent[0]); err != ErrAlreadyVerified {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyOTPWrongAndExpired(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	id, err := svc.Register(ctx, "bob@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", "000000"); err != ErrOTPInvalid {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if _, _, err := svc.VerifyOTP(ctx, "nobody@x.com", "000000"); !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// age the stored code past its validity window
	past := time.Now().Add(-time.Minute)
	store.users[id].OTPExpiry = &past

	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", mailer.sent[0]); err != ErrOTPExpired {
		t.Fatalf("expected ErrOTPExpired for correct-but-expired code, got %v", err)
	}
}

func TestResendOTPInvalidatesPreviousCode(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.ResendOTP(ctx, "bob@x.com"); err != nil {
		t.Fatalf("ResendOTP: %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 codes sent, got %d", len(mailer.sent))
	}

	first, second := mailer.sent[0], mailer.sent[1]
	if first != second {
		if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", first); err != ErrOTPInvalid {
			t.Fatalf("stale code must be invalid, got %v", err)
		}
	}
	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", second); err != nil {
		t.Fatalf("latest code must verify: %v", err)
	}

	if err := svc.ResendOTP(ctx, "bob@x.com"); err != ErrAlreadyVerified {
		t.Fatalf("expected ErrAlreadyVerified after verification, got %v", err)
	}
	if err := svc.ResendOTP(ctx, "nobody@x.com"); !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResendOTPDeliveryFailureKeepsNewCode(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	id, err := svc.Register(ctx, "bob@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	originalCode := *store.users[id].OTPCode

	mailer.fail = true
	if err := svc.ResendOTP(ctx, "bob@x.com"); !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}

	// no rollback: the overwritten code stays persisted
	stored := store.users[id]
	if stored.OTPCode == nil {
		t.Fatal("OTP must remain set after failed delivery")
	}
	if *stored.OTPCode == originalCode {
		t.Skip("freshly generated code collided with the original")
	}
	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", originalCode); err != ErrOTPInvalid {
		t.Fatalf("original code must no longer verify, got %v", err)
	}
}

func TestLoginFlow(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	id, err := svc.Register(ctx, "bob@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// unverified accounts cannot log in, and lastLogin stays untouched
	if _, _, err := svc.Login(ctx, "bob@x.com", "secret1"); err != ErrEmailNotVerified {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if store.users[id].LastLogin != nil {
		t.Fatal("lastLogin must not be set on a rejected login")
	}

	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", mailer.sent[0]); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	u, token, err := svc.Login(ctx, "bob@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if u.PasswordHash != "" {
		t.Fatal("password hash must not leak out of Login")
	}
	if u.LastLogin == nil || store.users[id].LastLogin == nil {
		t.Fatal("lastLogin must be recorded on success")
	}
}

func TestLoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	store := newMemoryUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(store, mailer)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.VerifyOTP(ctx, "bob@x.com", mailer.sent[0]); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	_, _, unknownErr := svc.Login(ctx, "nobody@x.com", "secret1")
	_, _, wrongPwErr := svc.Login(ctx, "bob@x.com", "wrong")

	if unknownErr != ErrInvalidCredentials || wrongPwErr != ErrInvalidCredentials {
		t.Fatalf("both failures must return the same error, got %v / %v", unknownErr, wrongPwErr)
	}
}
