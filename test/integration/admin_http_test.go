package integration

import (
	"net/http"
	"testing"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := newMockRouter(t)
	borrower := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/admin/applications", nil, borrower)
	if w.Code != http.StatusForbidden {
		t.Fatalf("borrower on admin route: expected 403, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/admin/applications", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous on admin route: expected 401, got %d", w.Code)
	}
}

func TestAdminReviewsApplications(t *testing.T) {
	r := newMockRouter(t)
	admin := loginAdmin(t, r)

	w := doJSON(t, r, http.MethodGet, "/admin/applications?status=pending", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("list applications: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	items, _ := decodeBody(t, w)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("pending applications = %s", w.Body.String())
	}
	item, _ := items[0].(map[string]any)
	id, _ := item["id"].(string)

	w = doJSON(t, r, http.MethodGet, "/admin/applications/"+id, nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("get application: expected 200, got %d", w.Code)
	}

	// Decisions write to the store, which mock mode refuses.
	w = doJSON(t, r, http.MethodPost, "/admin/applications/"+id+"/approve", nil, admin)
	if w.Code != http.StatusForbidden || decodeBody(t, w)["error"] != "read_only_mode" {
		t.Fatalf("approve in mock mode: expected 403 read_only_mode, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/admin/applications/"+id+"/disburse", nil, admin)
	if w.Code != http.StatusConflict {
		t.Fatalf("disburse pending application: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminPortfolioAnalytics(t *testing.T) {
	r := newMockRouter(t)
	admin := loginAdmin(t, r)

	w := doJSON(t, r, http.MethodGet, "/admin/portfolio/analytics", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("analytics: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["total_loans"] != float64(2) {
		t.Fatalf("total_loans = %v", body["total_loans"])
	}
	if body["active_loans"] != float64(1) || body["completed_loans"] != float64(1) {
		t.Fatalf("loan breakdown = %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/admin/system/health", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("system health: expected 200, got %d", w.Code)
	}
}

func TestAdminMarkDefaultReadOnlyInMockMode(t *testing.T) {
	r := newMockRouter(t)
	admin := loginAdmin(t, r)
	borrower := loginBorrower(t, r)

	w := doJSON(t, r, http.MethodGet, "/v1/loans/active", nil, borrower)
	active, _ := decodeBody(t, w)["items"].([]any)
	loan, _ := active[0].(map[string]any)
	loanID, _ := loan["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/admin/loans/"+loanID+"/default", map[string]string{
		"reason": "repeated missed payments",
	}, admin)
	if w.Code != http.StatusForbidden || decodeBody(t, w)["error"] != "read_only_mode" {
		t.Fatalf("default in mock mode: expected 403 read_only_mode, got %d: %s", w.Code, w.Body.String())
	}
}
