package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lessismore22/Quickfund/internal/auth"
	"github.com/lessismore22/Quickfund/internal/config"
	"github.com/lessismore22/Quickfund/internal/domain/application"
	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
	"github.com/lessismore22/Quickfund/internal/http/handlers"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
	"github.com/lessismore22/Quickfund/internal/server"
	"github.com/lessismore22/Quickfund/internal/ws"
)

// newMockRouter assembles the full API surface against the fixture store,
// the same wiring the server uses when MOCK_MODE is on.
func newMockRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{Env: "test", MockMode: true}
	jwtManager := auth.NewJWTManager("issuer", "aud", "test-secret")
	store := mockstore.New()

	authService := auth.NewService(mockstore.NewAuthRepo(), jwtManager, 15*time.Minute, 24*time.Hour)
	loanService := loandomain.NewService(store.Loans(), store.Repayments(), store.Payments(), store)
	appService := application.NewService(store.Applications(), store, store, loanService, store, application.Limits{})
	notificationService := notification.NewService(store.Notifications(), store, nil)

	return server.NewRouter(cfg, nopLogger(), server.Dependencies{
		Pinger:              store,
		AuthHandler:         handlers.NewAuthHandler(authService, auth.CookieConfig{}, 15*time.Minute, 24*time.Hour),
		ApplicationHandler:  handlers.NewApplicationHandler(appService),
		LoanHandler:         handlers.NewLoanHandler(loanService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		AdminHandler:        handlers.NewAdminHandler(appService, loanService),
		WSHandler:           ws.NewHandler(ws.NewHub()),
		JWTManager:          jwtManager,
	})
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) < 2 {
		t.Fatalf("login %s: expected auth cookies", email)
	}
	return cookies
}

func loginBorrower(t *testing.T, r *gin.Engine) []*http.Cookie {
	return login(t, r, mockstore.DemoBorrowerEmail, mockstore.DemoPassword)
}

func loginAdmin(t *testing.T, r *gin.Engine) []*http.Cookie {
	return login(t, r, mockstore.DemoAdminEmail, mockstore.DemoPassword)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}
