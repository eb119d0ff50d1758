package integration

import (
	"net/http"
	"testing"
)

func TestBorrowerSeesSeededLoans(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/loans", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list loans: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	items, ok := decodeBody(t, w)["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("loans = %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/loans/active", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("active loans: expected 200, got %d", w.Code)
	}
	active, _ := decodeBody(t, w)["items"].([]any)
	if len(active) != 1 {
		t.Fatalf("active loans = %s", w.Body.String())
	}

	loan, _ := active[0].(map[string]any)
	loanID, _ := loan["id"].(string)
	if loanID == "" {
		t.Fatalf("active loan has no id: %v", loan)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/loans/"+loanID+"/schedule", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("schedule: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	schedule, _ := decodeBody(t, w)["items"].([]any)
	if len(schedule) != 12 {
		t.Fatalf("schedule entries = %d, want 12", len(schedule))
	}
}

func TestLoanAccessIsScopedToOwner(t *testing.T) {
	r := newMockRouter(t)
	borrower := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/loans/active", nil, borrower)
	active, _ := decodeBody(t, w)["items"].([]any)
	loan, _ := active[0].(map[string]any)
	loanID, _ := loan["id"].(string)

	// Another account registered on the fly cannot read the demo user's loan.
	doJSON(t, r, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":      "stranger@example.com",
		"password":   "s3cret-pass",
		"first_name": "Sola",
		"last_name":  "Bello",
		"bvn":        "10987654321",
	}, nil)
	stranger := login(t, r, "stranger@example.com", "s3cret-pass")

	w = doJSON(t, r, http.MethodGet, "/v1/loans/"+loanID, nil, stranger)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign loan read: expected 404, got %d", w.Code)
	}
}

func TestPaymentWritesAreReadOnlyInMockMode(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/loans/active", nil, cookies)
	active, _ := decodeBody(t, w)["items"].([]any)
	loan, _ := active[0].(map[string]any)
	loanID, _ := loan["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/v1/payments", map[string]any{
		"loan_id": loanID,
		"amount":  "23668.22",
		"method":  "card",
	}, cookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("payment in mock mode: expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "read_only_mode" {
		t.Fatalf("body = %s", w.Body.String())
	}

	// Reads still work.
	w = doJSON(t, r, http.MethodGet, "/v1/payments", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list payments: expected 200, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/repayments", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list repayments: expected 200, got %d", w.Code)
	}
}

func TestApplicationListAndApplyInMockMode(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/applications", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list applications: expected 200, got %d", w.Code)
	}
	items, _ := decodeBody(t, w)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("applications = %s", w.Body.String())
	}

	// Incomplete form fails wizard validation before touching the store.
	w = doJSON(t, r, http.MethodPost, "/v1/loans/apply", map[string]any{
		"amount":      "50000",
		"term_months": 6,
	}, cookies)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid apply: expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "validation_failed" {
		t.Fatalf("body = %s", w.Body.String())
	}

	// A complete form reaches the store, which refuses writes in mock mode.
	w = doJSON(t, r, http.MethodPost, "/v1/loans/apply", map[string]any{
		"amount":            "50000",
		"purpose":           "inventory restock",
		"term_months":       6,
		"employment_status": "self_employed",
		"monthly_income":    "180000",
		"guarantor": map[string]string{
			"name":         "Adaeze Okafor",
			"phone":        "+2348012345678",
			"email":        "adaeze@example.com",
			"relationship": "sibling",
		},
		"terms_accepted": true,
	}, cookies)
	if w.Code != http.StatusForbidden || decodeBody(t, w)["error"] != "read_only_mode" {
		t.Fatalf("apply in mock mode: expected 403 read_only_mode, got %d: %s", w.Code, w.Body.String())
	}
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	r := newMockRouter(t)
	cookies := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/notifications", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list notifications: expected 200, got %d", w.Code)
	}
	items, _ := decodeBody(t, w)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("notifications = %s", w.Body.String())
	}
	item, _ := items[0].(map[string]any)
	id, _ := item["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/v1/notifications/"+id+"/read", nil, cookies)
	if w.Code != http.StatusForbidden || decodeBody(t, w)["error"] != "read_only_mode" {
		t.Fatalf("mark read in mock mode: expected 403 read_only_mode, got %d: %s", w.Code, w.Body.String())
	}
}
