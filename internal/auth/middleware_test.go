package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

// stubUserService serves a single user and reports everyone else as unknown
// with the user package's sentinel, the way the real service does.
type stubUserService struct {
	knownUser *user.User
}

func (s *stubUserService) Register(_, _, _ string) (*user.User, error) { return nil, nil }

func (s *stubUserService) GetUserByID(userID string) (*user.User, error) {
	if s.knownUser != nil && s.knownUser.ID == userID {
		return s.knownUser, nil
	}
	return nil, user.ErrUserNotFound
}

func (s *stubUserService) GetUserByLoginOrEmail(_ string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (s *stubUserService) ChangePasswordWithOldPassword(_, _, _ string) error { return nil }

func (s *stubUserService) ResetPassword(_, _ string) error { return nil }

func (s *stubUserService) SavePasswordResetCode(_, _ string, _ time.Time) error {
	return nil
}

func (s *stubUserService) GetPasswordResetCode(_ string) (string, time.Time, time.Time, error) {
	return "", time.Time{}, time.Time{}, user.ErrNoResetCode
}

func (s *stubUserService) DeletePasswordResetCode(_ string) error { return nil }

func (s *stubUserService) GetPreferences(_ string) (*user.Preferences, error) {
	return nil, user.ErrNoPreferencesYet
}

func (s *stubUserService) UpdatePreferences(_ *user.Preferences) error { return nil }

func (s *stubUserService) ListUsersWithBudgetAlerts() ([]user.User, error) { return nil, nil }

func (s *stubUserService) ListUsersWithAutoBackup() ([]user.User, error) { return nil, nil }

func (s *stubUserService) ListUsersWithMonthlyReports() ([]user.User, error) { return nil, nil }

func newMiddlewareFixture(knownUser *user.User) (Service, JWTManagerInterface) {
	jwtManager := NewJWTManager("middleware-test-secret")
	authService := NewAuthService(&stubUserService{knownUser: knownUser}, jwtManager, nil)
	return authService, jwtManager
}

func TestJWTAccessTokenMiddleware_SetsUserID(t *testing.T) {
	authService, jwtManager := newMiddlewareFixture(&user.User{ID: "user-1"})

	token, err := jwtManager.GenerateAccessJWT("user-1", time.Minute)
	assert.NoError(t, err)

	var seenUserID string
	handler := authService.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = r.Context().Value("userID").(string)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "user-1", seenUserID)
}

// A token can outlive its account. The middleware must treat a valid token
// for a removed user as unauthorized, not as a server failure.
func TestJWTAccessTokenMiddleware_RemovedUserIsUnauthorized(t *testing.T) {
	authService, jwtManager := newMiddlewareFixture(nil)

	token, err := jwtManager.GenerateAccessJWT("gone-user", time.Minute)
	assert.NoError(t, err)

	handler := authService.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a removed user")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestJWTAccessTokenMiddleware_MissingHeader(t *testing.T) {
	authService, _ := newMiddlewareFixture(&user.User{ID: "user-1"})

	handler := authService.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}
