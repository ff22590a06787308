package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginweb/internal/domain"
	"loginweb/internal/repository"
	"loginweb/internal/service"
	"loginweb/internal/store"
)

type testApp struct {
	router     *gin.Engine
	sessions   *service.SessionService
	users      *service.UserService
	presence   *service.PresenceService
	google     *GoogleHandler
	onlinePath string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	onlinePath := filepath.Join(dir, "online.json")
	uploadDir := filepath.Join(dir, "uploads")

	logger := zap.NewNop()
	userRepo := repository.NewFileUserRepository(store.NewTable[domain.User](usersPath))
	presenceRepo := repository.NewFilePresenceRepository(store.NewLenientTable[int64](onlinePath))

	users := service.NewUserService(logger, userRepo)
	presence := service.NewPresenceService(logger, presenceRepo, 300*time.Second)
	sessions := service.NewSessionService("test-secret", time.Hour)
	avatars := service.NewAvatarService(logger, users, uploadDir, "/static/uploads/", time.Second)

	gate := NewSessionGate(logger, sessions, presence)
	authH := NewAuthHandler(logger, users, sessions, presence, service.NewLoginRateLimiter(time.Minute, 100))
	googleH := NewGoogleHandler(logger, users, sessions, presence, avatars, nil)
	profileH := NewProfileHandler(logger, users, avatars)
	onlineH := NewOnlineHandler(logger, presence)

	router := NewRouter(logger, gate, authH, googleH, profileH, onlineH, "../../web/templates/*.html", "")
	return &testApp{
		router:     router,
		sessions:   sessions,
		users:      users,
		presence:   presence,
		google:     googleH,
		onlinePath: onlinePath,
	}
}

func (app *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func sessionCookieFor(t *testing.T, app *testApp, username string) *http.Cookie {
	t.Helper()
	token, err := app.sessions.Issue(username)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func onlineUsers(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var list []string
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode online list: %v (%s)", err, w.Body.String())
	}
	return list
}

func TestGateMarksAuthenticatedUserOnline(t *testing.T) {
	app := newTestApp(t)
	cookie := sessionCookieFor(t, app, "alice")

	w := app.get("/api/online", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := onlineUsers(t, w)
	if len(list) != 1 || list[0] != "alice" {
		t.Fatalf("expected [alice], got %v", list)
	}
}

func TestGateAnonymousRequestStillSweeps(t *testing.T) {
	app := newTestApp(t)

	// Entrada vencida sembrada directamente en el archivo.
	stale := fmt.Sprintf("{\n  \"old\": %d\n}\n", time.Now().Unix()-1000)
	if err := os.WriteFile(app.onlinePath, []byte(stale), 0o644); err != nil {
		t.Fatalf("seed online file: %v", err)
	}

	w := app.get("/login")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data, err := os.ReadFile(app.onlinePath)
	if err != nil {
		t.Fatalf("read online file: %v", err)
	}
	if strings.Contains(string(data), "old") {
		t.Fatalf("expected stale entry swept, file: %s", data)
	}
}

func TestGateInvalidCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	cookie := &http.Cookie{Name: sessionCookie, Value: "garbage"}

	w := app.get("/api/online", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if list := onlineUsers(t, w); len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/home", "/profile"} {
		w := app.get(path)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %q", path, loc)
		}
	}
}

func TestRequireUserAllowsAuthenticated(t *testing.T) {
	app := newTestApp(t)
	if err := app.users.Register(context.Background(), "alice", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	cookie := sessionCookieFor(t, app, "alice")

	w := app.get("/home", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "alice") {
		t.Fatalf("expected page to greet alice: %s", w.Body.String())
	}
}
