package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"billboardwatch/internal/token"
	"billboardwatch/pkg/types"
)

func doJSON(t *testing.T, env *testEnv, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	env.svc.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, env *testEnv, name, email, role string) (types.UserView, string) {
	t.Helper()

	rec := doJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret1",
		"role":     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string         `json:"token"`
		User  types.UserView `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token in the register response")
	}
	return resp.User, resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	rec := doJSON(t, env, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["message"] == "" || payload["version"] == "" {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	user, _ := registerUser(t, env, "Alice", "Alice@Example.com", "")
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != types.UserRolePublic {
		t.Fatalf("expected default public role, got %q", user.Role)
	}

	// Duplicate registration, different case.
	rec := doJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Alice Again", "email": "ALICE@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}

	rec = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", rec.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	user, bearer := registerUser(t, env, "Alice", "alice@example.com", "")

	rec := doJSON(t, env, http.MethodGet, "/api/auth/me", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		User types.UserView `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.User.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, resp.User.ID)
	}
}

func TestAuthReasonCodes(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	user, _ := registerUser(t, env, "Alice", "alice@example.com", "")

	assertReason := func(bearer, wantReason string) {
		t.Helper()
		rec := doJSON(t, env, http.MethodGet, "/api/reports", bearer, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Reason string `json:"reason"`
		}
		decodeBody(t, rec, &resp)
		if resp.Reason != wantReason {
			t.Fatalf("expected reason %q, got %q", wantReason, resp.Reason)
		}
	}

	assertReason("", "missing_token")
	assertReason("not-a-token", "token_invalid")

	expiredIssuer := token.NewIssuer(testSecret, -time.Minute)
	expired, err := expiredIssuer.Issue(&types.User{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		t.Fatalf("failed to issue expired token: %v", err)
	}
	assertReason(expired, "token_expired")

	ghost, err := env.issuer.Issue(&types.User{ID: "ghost", Email: "ghost@example.com", Role: types.UserRolePublic})
	if err != nil {
		t.Fatalf("failed to issue ghost token: %v", err)
	}
	assertReason(ghost, "unknown_user")
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	alice, aliceToken := registerUser(t, env, "Alice", "alice@example.com", "")
	_, bobToken := registerUser(t, env, "Bob", "bob@example.com", "")
	reviewer, reviewerToken := registerUser(t, env, "Gov Greta", "greta@gov.example.com", "organization")

	// Public create with image, via multipart.
	rec := doMultipartCreate(t, env, aliceToken, `{"address":"12 Elm St"}`, `{"size":"large","type":"digital"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Report types.ReportView `json:"report"`
	}
	decodeBody(t, rec, &created)
	if created.Report.Status != types.ReportStatusPending {
		t.Fatalf("expected pending, got %q", created.Report.Status)
	}
	if created.Report.Reporter.Name != "Alice" || created.Report.Reporter.Email != "alice@example.com" {
		t.Fatalf("expected expanded reporter, got %+v", created.Report.Reporter)
	}
	reportID := created.Report.ID

	// Public create without image fails.
	rec = doJSON(t, env, http.MethodPost, "/api/reports", aliceToken, map[string]any{
		"location":         map[string]any{"address": "34 Oak Ave"},
		"billboardDetails": map[string]any{"size": "small", "type": "static"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for imageless public create, got %d", rec.Code)
	}

	// Organization create without image succeeds.
	rec = doJSON(t, env, http.MethodPost, "/api/reports", reviewerToken, map[string]any{
		"location":         map[string]any{"address": "34 Oak Ave", "coordinates": map[string]float64{"lat": 1.5, "lng": 2.5}},
		"billboardDetails": map[string]any{"size": "small", "type": "static"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("organization create returned %d: %s", rec.Code, rec.Body.String())
	}

	// Listing: Bob sees nothing, Alice one, reviewer everything.
	var listing struct {
		Reports []types.ReportView `json:"reports"`
	}
	rec = doJSON(t, env, http.MethodGet, "/api/reports", bobToken, nil)
	decodeBody(t, rec, &listing)
	if len(listing.Reports) != 0 {
		t.Fatalf("expected empty listing for bob, got %d", len(listing.Reports))
	}

	rec = doJSON(t, env, http.MethodGet, "/api/reports", aliceToken, nil)
	decodeBody(t, rec, &listing)
	if len(listing.Reports) != 1 || listing.Reports[0].Reporter.ID != alice.ID {
		t.Fatalf("unexpected listing for alice: %+v", listing.Reports)
	}

	rec = doJSON(t, env, http.MethodGet, "/api/reports", reviewerToken, nil)
	decodeBody(t, rec, &listing)
	if len(listing.Reports) != 2 {
		t.Fatalf("expected 2 reports for reviewer, got %d", len(listing.Reports))
	}

	// Status update requires the organization role.
	rec = doJSON(t, env, http.MethodPut, "/api/reports/"+reportID, aliceToken, map[string]string{"status": "verified"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for public status update, got %d", rec.Code)
	}

	rec = doJSON(t, env, http.MethodPut, "/api/reports/"+reportID, reviewerToken, map[string]string{"status": "verified"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Report types.ReportView `json:"report"`
	}
	decodeBody(t, rec, &updated)
	if updated.Report.Status != types.ReportStatusVerified {
		t.Fatalf("expected verified, got %q", updated.Report.Status)
	}
	if updated.Report.VerifiedBy == nil || updated.Report.VerifiedBy.ID != reviewer.ID {
		t.Fatalf("expected verifiedBy %s, got %+v", reviewer.ID, updated.Report.VerifiedBy)
	}

	// Alice still sees her verified report.
	rec = doJSON(t, env, http.MethodGet, "/api/reports", aliceToken, nil)
	decodeBody(t, rec, &listing)
	if len(listing.Reports) != 1 || listing.Reports[0].Status != types.ReportStatusVerified {
		t.Fatalf("expected the verified report in alice's listing, got %+v", listing.Reports)
	}

	// Verified reports cannot be deleted.
	rec = doJSON(t, env, http.MethodDelete, "/api/reports/"+reportID, aliceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting a verified report, got %d", rec.Code)
	}

	rec = doJSON(t, env, http.MethodPut, "/api/reports/missing", reviewerToken, map[string]string{"status": "verified"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", rec.Code)
	}
}

func TestDeleteReportOverHTTP(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	_, aliceToken := registerUser(t, env, "Alice", "alice@example.com", "")
	_, bobToken := registerUser(t, env, "Bob", "bob@example.com", "")

	rec := doMultipartCreate(t, env, aliceToken, `{"address":"12 Elm St"}`, `{"size":"large","type":"digital"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Report types.ReportView `json:"report"`
	}
	decodeBody(t, rec, &created)

	rec = doJSON(t, env, http.MethodDelete, "/api/reports/"+created.Report.ID, bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign delete, got %d", rec.Code)
	}

	rec = doJSON(t, env, http.MethodDelete, "/api/reports/"+created.Report.ID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete returned %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.images.deleted) != 1 {
		t.Fatalf("expected image cleanup, got %v", env.images.deleted)
	}

	rec = doJSON(t, env, http.MethodDelete, "/api/reports/"+created.Report.ID, aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", rec.Code)
	}
}

func doMultipartCreate(t *testing.T, env *testEnv, bearer, locationJSON, detailsJSON string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("location", locationJSON); err != nil {
		t.Fatalf("failed to write location field: %v", err)
	}
	if err := writer.WriteField("billboardDetails", detailsJSON); err != nil {
		t.Fatalf("failed to write billboardDetails field: %v", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="billboard.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create image part: %v", err)
	}
	fmt.Fprint(part, "jpeg-bytes")

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)

	rec := httptest.NewRecorder()
	env.svc.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatalf("failed to build test env: %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/reports", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	env.svc.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/api/reports", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	env.svc.server.Handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unlisted origin, got %q", got)
	}
}
