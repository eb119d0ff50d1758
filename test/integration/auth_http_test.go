package integration

import (
	"net/http"
	"testing"

	"github.com/lessismore22/Quickfund/internal/auth"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
)

func TestRegisterLoginAndMe(t *testing.T) {
	r := newMockRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":          "amaka@example.com",
		"password":       "s3cret-pass",
		"first_name":     "Amaka",
		"last_name":      "Obi",
		"bvn":            "12345678901",
		"monthly_income": "180000",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	cookies := login(t, r, "amaka@example.com", "s3cret-pass")

	w = doJSON(t, r, http.MethodGet, "/v1/auth/me", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user, ok := decodeBody(t, w)["user"].(map[string]any)
	if !ok {
		t.Fatalf("me body = %s", w.Body.String())
	}
	if user["email"] != "amaka@example.com" {
		t.Fatalf("me email = %v", user["email"])
	}
}

func TestRegisterRejectsBadBVNAndDuplicateEmail(t *testing.T) {
	r := newMockRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":      "short-bvn@example.com",
		"password":   "s3cret-pass",
		"first_name": "Amaka",
		"last_name":  "Obi",
		"bvn":        "123",
	}, nil)
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "invalid_bvn" {
		t.Fatalf("short bvn: got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":      mockstore.DemoBorrowerEmail,
		"password":   "s3cret-pass",
		"first_name": "Demo",
		"last_name":  "User",
		"bvn":        "12345678901",
	}, nil)
	if w.Code != http.StatusConflict || decodeBody(t, w)["error"] != "email_taken" {
		t.Fatalf("duplicate email: got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := newMockRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    mockstore.DemoBorrowerEmail,
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	var before string
	for _, c := range cookies {
		if c.Name == auth.RefreshCookieName {
			before = c.Value
		}
	}

	w := doJSON(t, r, http.MethodPost, "/v1/auth/refresh", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.RefreshCookieName {
			if c.Value == before {
				t.Fatalf("refresh token not rotated")
			}
			if c.Value == "" {
				t.Fatalf("refresh cookie cleared instead of rotated")
			}
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	// The old refresh token is useless after logout.
	w = doJSON(t, r, http.MethodPost, "/v1/auth/refresh", nil, cookies)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newMockRouter(t)

	for _, path := range []string{"/v1/loans", "/v1/applications", "/v1/notifications"} {
		w := doJSON(t, r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without cookie: expected 401, got %d", path, w.Code)
		}
	}
}
