package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	emailService "github.com/mwielgus/StockWatch/internal/email"
	"github.com/mwielgus/StockWatch/internal/session"
	"github.com/mwielgus/StockWatch/internal/user"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockUserService struct {
	user *User
}

// User aliases keep the mock readable.
type User = user.User

func (m *mockUserService) Register(ctx context.Context, req user.RegisterRequest) (*User, error) {
	return m.user, nil
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if m.user == nil {
		return nil, user.ErrUserNotFound
	}
	return m.user, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*User, error) {
	if m.user == nil {
		return nil, user.ErrUserNotFound
	}
	return m.user, nil
}

func (m *mockUserService) VerifyPassword(u *User, password string) error {
	return nil
}

func (m *mockUserService) ListForNewsDelivery(ctx context.Context) ([]user.NewsRecipient, error) {
	return nil, nil
}

func (m *mockUserService) ResolvePersistentUserID(ctx context.Context) (user.ResolvedUser, error) {
	return user.ResolvedUser{}, nil
}

func (m *mockUserService) ResolveUserIDByEmail(ctx context.Context, email string) (string, error) {
	return "", nil
}

type mockEmailSender struct {
	sent []string
}

func (m *mockEmailSender) QueueEmail(to string, data emailService.EmailData) {
	m.sent = append(m.sent, to)
}

func newTestMiddleware(t *testing.T, users *mockUserService) (func(http.Handler) http.Handler, JWTManagerInterface) {
	t.Helper()
	jwtManager := NewJWTManager("test-secret")
	svc := NewAuthService(users, jwtManager, &mockEmailSender{}, zap.NewNop())
	return svc.SessionMiddleware(), jwtManager
}

func TestSessionMiddlewareNoCookie(t *testing.T) {
	middleware, _ := newTestMiddleware(t, &mockUserService{user: &User{ID: "user-1"}})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached without a session cookie")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/protected/watchlist", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareInvalidToken(t *testing.T) {
	middleware, _ := newTestMiddleware(t, &mockUserService{user: &User{ID: "user-1"}})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/watchlist", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareExpiredToken(t *testing.T) {
	middleware, jwtManager := newTestMiddleware(t, &mockUserService{user: &User{ID: "user-1"}})

	token, err := jwtManager.GenerateSessionJWT("user-1", "j@example.com", -time.Minute)
	assert.NoError(t, err)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/watchlist", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareUnknownUser(t *testing.T) {
	middleware, jwtManager := newTestMiddleware(t, &mockUserService{user: nil})

	token, err := jwtManager.GenerateSessionJWT("user-1", "j@example.com", time.Hour)
	assert.NoError(t, err)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached for a deleted account")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/watchlist", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareValidCookie(t *testing.T) {
	middleware, jwtManager := newTestMiddleware(t, &mockUserService{user: &User{ID: "user-1", Email: "j@example.com"}})

	token, err := jwtManager.GenerateSessionJWT("user-1", "j@example.com", time.Hour)
	assert.NoError(t, err)

	var got session.User
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionUser, ok := session.FromContext(r.Context())
		assert.True(t, ok)
		got = sessionUser
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/watchlist", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "j@example.com", got.Email)
}

func TestRegisterQueuesWelcomeEmail(t *testing.T) {
	emails := &mockEmailSender{}
	users := &mockUserService{user: &User{ID: "user-1", Email: "j@example.com", FullName: "John Doe"}}
	svc := NewAuthService(users, NewJWTManager("test-secret"), emails, zap.NewNop())

	_, token, err := svc.Register(context.Background(), user.RegisterRequest{
		Email: "j@example.com", Password: "longenough", FullName: "John Doe",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"j@example.com"}, emails.sent)
}
