package unit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lessismore22/Quickfund/internal/auth"
)

func TestSetAndClearAuthCookies(t *testing.T) {
	r := httptest.NewRecorder()
	cfg := auth.CookieConfig{Secure: false}

	auth.SetAuthCookies(r, cfg, "access", "refresh", 15*time.Minute, 24*time.Hour)
	cookies := r.Result().Cookies()
	if len(cookies) < 2 {
		t.Fatalf("expected auth cookies")
	}
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names[auth.AccessCookieName] || !names[auth.RefreshCookieName] {
		t.Fatalf("cookie names = %v", names)
	}

	r2 := httptest.NewRecorder()
	auth.ClearAuthCookies(r2, cfg)
	for _, c := range r2.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			t.Fatalf("cookie %s not cleared", c.Name)
		}
	}
}
