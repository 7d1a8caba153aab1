package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"formgate/internal/app/service"
	"formgate/internal/common/security"
	"formgate/internal/domain/model"
	"formgate/internal/domain/repository"
	"formgate/internal/platform/config"
	"formgate/internal/platform/database"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	config.AppConfig = &config.Config{
		AdminUsername:   "admin",
		AdminPassword:   "secret",
		JWTKey:          []byte("test-secret"),
		JWTExp:          time.Hour,
		AllowedOrigins:  []string{"*"},
		MaxPageLimit:    100,
		MaxSearchLength: 256,
	}
	security.InitJWT()

	db, dialect, err := database.Open("sqlite", filepath.Join(t.TempDir(), "api.db"), "")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSQLSubmissionRepository(db, dialect)
	return NewRouter(service.NewAuthService(), service.NewSubmissionService(repo), nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func asAdmin(req *http.Request) {
	req.SetBasicAuth("admin", "secret")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSubmitAndListEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{
		"formId": "contact-form",
		"name":   "Taro",
		"email":  "t@example.com",
	}, func(req *http.Request) {
		req.Header.Set("User-Agent", "e2e-agent")
		req.Header.Set("Referer", "https://example.com/contact")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	var submitResp struct {
		Success      bool   `json:"success"`
		SubmissionID string `json:"submissionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if !submitResp.Success || submitResp.SubmissionID == "" {
		t.Fatalf("submit response = %+v", submitResp)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions?formId=contact-form", nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body)
	}
	var listResp struct {
		Data       []model.Submission `json:"data"`
		Pagination model.Pagination   `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Data) != 1 {
		t.Fatalf("listed %d submissions, want 1", len(listResp.Data))
	}
	got := listResp.Data[0]
	if got.ID != submitResp.SubmissionID {
		t.Fatalf("listed id %q, want %q", got.ID, submitResp.SubmissionID)
	}
	if got.Data["name"] != "Taro" || got.Data["email"] != "t@example.com" {
		t.Fatalf("listed data = %#v", got.Data)
	}
	if _, leaked := got.Data["formId"]; leaked {
		t.Fatal("formId leaked into stored data")
	}
	if got.Metadata.UserAgent != "e2e-agent" {
		t.Fatalf("userAgent = %q", got.Metadata.UserAgent)
	}
	if got.Metadata.Referrer == nil || *got.Metadata.Referrer != "https://example.com/contact" {
		t.Fatalf("referrer = %v", got.Metadata.Referrer)
	}
	if listResp.Pagination.CurrentPage != 1 || listResp.Pagination.TotalItems != 1 || listResp.Pagination.TotalPages != 1 || listResp.Pagination.Limit != 20 {
		t.Fatalf("pagination = %+v", listResp.Pagination)
	}

	// Detail fetch round-trips the same submission.
	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions/"+submitResp.SubmissionID, nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestSubmitRejectsMissingFormID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"name": "x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "formId is required") {
		t.Fatalf("body = %s", rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/forms/submit", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", rec.Code)
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no auth status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, func(req *http.Request) {
		req.SetBasicAuth("admin", "wrong")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("basic auth status = %d, want 200", rec.Code)
	}
}

func TestBasicAuthSchemeIsCaseInsensitive(t *testing.T) {
	router := newTestRouter(t)
	credentials := base64.StdEncoding.EncodeToString([]byte("admin:secret"))

	rec := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "basic "+credentials)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("lowercase scheme status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "BASIC "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status = %d, want 401", rec.Code)
	}
}

func TestLoginIssuesUsableBearerToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "secret",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("empty token")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "nope",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}
}

func TestDeleteSubmissionTwice(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"formId": "f"}, nil)
	var submitResp struct {
		SubmissionID string `json:"submissionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/admin/submissions/"+submitResp.SubmissionID, nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/admin/submissions/"+submitResp.SubmissionID, nil, asAdmin)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/submissions/does-not-exist", nil, asAdmin)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCorsPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/forms/submit", nil)
	req.Header.Set("Origin", "https://tenant.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q, want *", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"formId": "contact-form", "name": "alice"}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/submissions/export?formId=contact-form", nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content-type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "submissions-contact-form-") {
		t.Fatalf("content-disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 row", len(lines))
	}
}

func TestListFormsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"formId": "a"}, nil)
	doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"formId": "a"}, nil)
	doJSON(t, router, http.MethodPost, "/api/forms/submit", map[string]interface{}{"formId": "b"}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/forms", nil, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var forms []model.FormSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &forms); err != nil {
		t.Fatalf("decode forms: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("forms = %+v, want 2 entries", forms)
	}
}
