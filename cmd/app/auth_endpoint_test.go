package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/model"
	"TechMartAPI/internal/services"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserStore keeps accounts in a map so handler tests run without a
// document store.
type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) (string, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return "", model.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users[u.ID.Hex()] = &cp
	return u.ID.Hex(), nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserStore) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.OTPCode = &code
	u.OTPExpiry = &expiry
	return nil
}

func (f *fakeUserStore) MarkVerified(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsVerified = true
	u.OTPCode = nil
	u.OTPExpiry = nil
	return nil
}

func (f *fakeUserStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

type captureMailer struct {
	lastCode string
}

func (m *captureMailer) SendOTPEmail(ctx context.Context, toEmail, otpCode string) error {
	m.lastCode = otpCode
	return nil
}

func newTestServer() (*echo.Echo, *fakeUserStore, *captureMailer) {
	store := newFakeUserStore()
	mailer := &captureMailer{}
	jwtMgr := middleware.NewJWTManager("test-secret")
	authSvc := services.NewAuthService(store, mailer, nil, jwtMgr)

	e := echo.New()
	api := e.Group("/api")
	registerAuthRoutes(api, authSvc, jwtMgr)
	return e, store, mailer
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	e, _, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bob@x.com","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bob@x.com","password":"other"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bad","password":"pw"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", rec.Code)
	}
}

func TestVerifyAndLoginEndpoints(t *testing.T) {
	e, _, mailer := newTestServer()

	if rec := doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bob@x.com","password":"secret1"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}

	// login before verification is rejected
	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"bob@x.com","password":"secret1"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unverified login: expected 401, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/verify-otp", `{"email":"bob@x.com","otpCode":"000000"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong code: expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/verify-otp", `{"email":"bob@x.com","otpCode":"`+mailer.lastCode+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"bob@x.com","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("expected a token in the login response")
	}

	// token works against the protected endpoint
	rec = doJSON(e, http.MethodGet, "/api/auth/me", "", loginResp.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}
}

func TestLoginEndpointDoesNotRevealAccounts(t *testing.T) {
	e, _, mailer := newTestServer()

	doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bob@x.com","password":"secret1"}`, "")
	doJSON(e, http.MethodPost, "/api/auth/verify-otp", `{"email":"bob@x.com","otpCode":"`+mailer.lastCode+`"}`, "")

	unknown := doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"nobody@x.com","password":"secret1"}`, "")
	wrongPw := doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"bob@x.com","password":"wrong"}`, "")

	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrongPw.Code)
	}
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Fatalf("responses must be indistinguishable: %s vs %s", unknown.Body, wrongPw.Body)
	}
}

func TestResendOTPEndpoint(t *testing.T) {
	e, _, mailer := newTestServer()

	doJSON(e, http.MethodPost, "/api/auth/register", `{"email":"bob@x.com","password":"secret1"}`, "")
	firstCode := mailer.lastCode

	rec := doJSON(e, http.MethodPost, "/api/auth/resend-otp", `{"email":"bob@x.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resend: expected 200, got %d", rec.Code)
	}

	if firstCode != mailer.lastCode {
		rec = doJSON(e, http.MethodPost, "/api/auth/verify-otp", `{"email":"bob@x.com","otpCode":"`+firstCode+`"}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("stale code: expected 400, got %d", rec.Code)
		}
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/resend-otp", `{"email":"nobody@x.com"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown email: expected 404, got %d", rec.Code)
	}
}
