package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tabletalk-server/auth"
	"tabletalk-server/database"
	"tabletalk-server/middleware"
	"tabletalk-server/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

type fakeUserFinder struct {
	users map[string]*models.User
	calls int
	err   error
}

func (f *fakeUserFinder) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return user, nil
}

// adminRouter wires the full chain in front of a handler that counts how
// often the protected operation actually runs.
func adminRouter(finder *fakeUserFinder, hits *int) *gin.Engine {
	router := gin.New()
	router.GET("/admin",
		middleware.RequireAuth(testSecret),
		middleware.RequireVerifiedEmail(),
		middleware.RequireAdmin(finder),
		func(c *gin.Context) {
			*hits++
			c.JSON(http.StatusOK, gin.H{"email": middleware.VerifiedEmail(c)})
		},
	)
	return router
}

func signToken(t *testing.T, email string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.Sign(email, "", testSecret, ttl)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return token
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	finder := &fakeUserFinder{}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if finder.calls != 0 || hits != 0 {
		t.Error("nothing past the first guard should run")
	}
}

func TestGarbageTokenIsUnauthorized(t *testing.T) {
	finder := &fakeUserFinder{}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if finder.calls != 0 || hits != 0 {
		t.Error("nothing past the first guard should run")
	}
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	finder := &fakeUserFinder{}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "a@x.com", -time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestTokenWithoutEmailIsForbiddenBeforeStoreLookup(t *testing.T) {
	finder := &fakeUserFinder{}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "", time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if finder.calls != 0 {
		t.Error("the user store must not be consulted when email binding fails")
	}
	if hits != 0 {
		t.Error("protected handler must not run")
	}
}

func TestNonAdminIsForbiddenBeforeProtectedOperation(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*models.User{
		"guest@x.com": {Email: "guest@x.com", Role: models.RoleGuest},
	}}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "guest@x.com", time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if hits != 0 {
		t.Error("protected operation ran for a non-admin identity")
	}
}

func TestUnknownUserIsForbidden(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*models.User{}}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "nobody@x.com", time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if hits != 0 {
		t.Error("protected operation ran for an unknown identity")
	}
}

func TestAdminPassesFullChain(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*models.User{
		"admin@x.com": {Email: "admin@x.com", Role: models.RoleAdmin},
	}}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin@x.com", time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if finder.calls != 1 {
		t.Errorf("store lookups = %d, want 1", finder.calls)
	}
}

func TestCookieTakesPrecedenceOverHeader(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*models.User{
		"admin@x.com": {Email: "admin@x.com", Role: models.RoleAdmin},
	}}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "admin@x.com", time.Hour)})
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (cookie token should win)", w.Code)
	}
}

func TestStoreErrorIsInternal(t *testing.T) {
	finder := &fakeUserFinder{err: context.DeadlineExceeded}
	hits := 0
	router := adminRouter(finder, &hits)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin@x.com", time.Hour))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if hits != 0 {
		t.Error("protected operation must not run on a store error")
	}
}
