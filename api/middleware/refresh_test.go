package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/service"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type gateFixture struct {
	app     *echo.Echo
	store   *service.FakeStore
	service *service.AuthService
	manager *session.Manager
	hits    *int
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := service.NewFakeStore()
	authService := service.NewAuthService(
		store.Users(),
		store.Tokens(),
		store.Sessions(),
		nil,
		service.FakeHasher{},
		service.FakeMailTokens{},
		service.RealClock{},
		service.AuthConfig{RefreshTokenTTL: 7 * 24 * time.Hour},
		logger,
	)
	manager := session.NewManager(store.Sessions(), logger, time.Hour)

	cookies := CookieConfig{}
	loader := SessionLoader{Manager: manager, Cookies: cookies}
	gate := RefreshGate{
		Service:   authService,
		Sessions:  manager,
		Cookies:   cookies,
		AllowList: []string{"/api/users/login"},
	}

	hits := 0
	probe := func(c echo.Context) error {
		hits++
		return c.NoContent(http.StatusOK)
	}

	app := echo.New()
	app.GET("/api/protected", probe, loader.Handle, gate.Handle)
	app.GET("/api/users/login", probe, loader.Handle, gate.Handle)

	return &gateFixture{app: app, store: store, service: authService, manager: manager, hits: &hits}
}

func (f *gateFixture) request(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertExpiredBody(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["message"] != "Session expired" || body["redirectTo"] != "/" {
		t.Errorf("body = %v", body)
	}
}

func TestGateAllowsListedRoute(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request("/api/users/login")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *f.hits != 1 {
		t.Error("handler not reached on allow-listed route")
	}
}

func TestGateAdmitsBoundSession(t *testing.T) {
	f := newGateFixture(t)
	user := f.store.SeedUser("Ann", "a@b.com", "hashed:p1", true)
	data, _ := json.Marshal(map[string]any{"user": map[string]any{"id": user.ID, "name": "Ann", "email": "a@b.com"}})
	f.store.SeedSession("sid-1", user.ID, data, time.Now().Add(30*time.Minute))

	rec := f.request("/api/protected", &http.Cookie{Name: SessionCookieName, Value: "sid-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *f.hits != 1 {
		t.Error("handler not reached with bound session")
	}

	// Rolling window: the sid cookie comes back with a fresh deadline.
	sid := findCookie(rec, SessionCookieName)
	if sid == nil || sid.Value != "sid-1" {
		t.Errorf("sid cookie = %+v, want re-issued sid-1", sid)
	}
	record := f.store.SessionRecord("sid-1")
	if !record.Expire.After(time.Now().Add(55 * time.Minute)) {
		t.Errorf("session deadline not extended, expire = %v", record.Expire)
	}
}

func TestGateRejectsWithoutRefreshCookie(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request("/api/protected")
	assertExpiredBody(t, rec)
	if *f.hits != 0 {
		t.Error("handler reached without credentials")
	}
}

func TestGateRotatesRefreshToken(t *testing.T) {
	f := newGateFixture(t)
	user := f.store.SeedUser("Ann", "a@b.com", "hashed:p1", true)
	f.store.SeedToken("valid-token", user.ID, time.Now().Add(time.Hour))

	rec := f.request("/api/protected", &http.Cookie{Name: RefreshCookieName, Value: "valid-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if *f.hits != 1 {
		t.Error("handler not reached after rotation")
	}

	rToken := findCookie(rec, RefreshCookieName)
	if rToken == nil || rToken.Value == "" || rToken.Value == "valid-token" {
		t.Fatalf("rToken cookie = %+v, want a fresh token", rToken)
	}
	if !rToken.HttpOnly {
		t.Error("rToken cookie must be httpOnly")
	}
	if f.store.TokenExists("valid-token") {
		t.Error("presented token survived rotation")
	}
	if !f.store.TokenExists(rToken.Value) {
		t.Error("issued cookie does not match a stored token")
	}

	sid := findCookie(rec, SessionCookieName)
	if sid == nil || sid.Value == "" {
		t.Fatal("no sid cookie issued after rotation")
	}
	record := f.store.SessionRecord(sid.Value)
	if record == nil {
		t.Fatal("no session row behind the issued sid")
	}
	if record.UserID == nil || *record.UserID != user.ID {
		t.Error("session not linked to the token owner")
	}
}

func TestGateClearsStaleRefreshToken(t *testing.T) {
	tests := []struct {
		name  string
		seed  func(f *gateFixture)
		value string
	}{
		{
			name:  "unknown token",
			value: "never-issued",
		},
		{
			name: "expired token",
			seed: func(f *gateFixture) {
				user := f.store.SeedUser("Ann", "a@b.com", "hashed:p1", true)
				f.store.SeedToken("stale", user.ID, time.Now().Add(-time.Minute))
			},
			value: "stale",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newGateFixture(t)
			if test.seed != nil {
				test.seed(f)
			}

			rec := f.request("/api/protected", &http.Cookie{Name: RefreshCookieName, Value: test.value})
			assertExpiredBody(t, rec)

			rToken := findCookie(rec, RefreshCookieName)
			if rToken == nil {
				t.Fatal("no clearing rToken cookie in response")
			}
			if rToken.Value != "" || rToken.MaxAge != -1 {
				t.Errorf("rToken cookie = %+v, want cleared", rToken)
			}
		})
	}
}

func TestGateSingleUseAcrossRequests(t *testing.T) {
	f := newGateFixture(t)
	user := f.store.SeedUser("Ann", "a@b.com", "hashed:p1", true)
	f.store.SeedToken("once", user.ID, time.Now().Add(time.Hour))

	first := f.request("/api/protected", &http.Cookie{Name: RefreshCookieName, Value: "once"})
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	// Replaying the consumed token without the issued sid must fail.
	second := f.request("/api/protected", &http.Cookie{Name: RefreshCookieName, Value: "once"})
	assertExpiredBody(t, second)
}
