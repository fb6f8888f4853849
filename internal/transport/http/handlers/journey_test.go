package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"talenthub/internal/app/server"
	"talenthub/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0000000000000000000000000000000000000000000000000000000000000000",
		Environment:        "test",
		SeedTenantName:     "Test Agency",
		SignupTenantName:   "Test Agency",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedVenueName:      "Test Venue",
		AllowSelfSignup:    true,
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 10000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func TestPayrollAndLeaderboardJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	email := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeeID := createEmployee(t, client, ts.URL, token, email, "active")

	postJSON(t, client, ts.URL+"/api/v1/finance/transactions", token, map[string]any{
		"employeeId":  employeeID,
		"type":        "voucher_income",
		"amount":      3000,
		"date":        "2026-02-10",
		"periodMonth": 2,
		"periodYear":  2026,
		"description": "February vouchers",
	})
	postJSON(t, client, ts.URL+"/api/v1/finance/transactions", token, map[string]any{
		"employeeId":  employeeID,
		"type":        "deduction_loan",
		"amount":      500,
		"date":        "2026-02-15",
		"periodMonth": 2,
		"periodYear":  2026,
	})

	summary := getJSON(t, client, ts.URL+"/api/v1/finance/summary?employeeId="+employeeID+"&month=2&year=2026", token)
	var totals map[string]float64
	if err := json.Unmarshal(summary.Data, &totals); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if totals["totalIncome"] != 3000 || totals["totalDeduction"] != 500 || totals["netSalary"] != 2500 {
		t.Fatalf("unexpected summary: %+v", totals)
	}

	postJSON(t, client, ts.URL+"/api/v1/gamification/reviews", token, map[string]any{
		"employeeId":       employeeID,
		"month":            2,
		"year":             2026,
		"performanceScore": 80,
		"customerRating":   4.5,
	})
	postJSON(t, client, ts.URL+"/api/v1/gamification/snapshots/run", token, map[string]any{
		"month": 2,
		"year":  2026,
	})

	board := getJSON(t, client, ts.URL+"/api/v1/gamification/leaderboard?month=2&year=2026", token)
	var boardPayload struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(board.Data, &boardPayload); err != nil {
		t.Fatalf("failed to decode leaderboard: %v", err)
	}
	if len(boardPayload.Entries) == 0 {
		t.Fatal("expected leaderboard entries after snapshot run")
	}
	badge, _ := boardPayload.Entries[0]["badge"].(string)
	if badge == "" {
		t.Fatal("expected badge on leaderboard entry")
	}
}

func TestMemberShopAndRecruitingJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	memberEmail := fmt.Sprintf("member-%d@example.com", time.Now().UnixNano())
	memberPassword := "Member123!"
	registerResp := postJSON(t, client, ts.URL+"/api/v1/auth/register", "", map[string]any{
		"email":    memberEmail,
		"password": memberPassword,
		"fullName": "Morgan Member",
	})
	var registered map[string]string
	if err := json.Unmarshal(registerResp.Data, &registered); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	memberEmployeeID := registered["employeeId"]
	if memberEmployeeID == "" {
		t.Fatal("expected employee id from registration")
	}

	memberToken := login(t, client, ts.URL, memberEmail, memberPassword)

	// Attendance is always self-scoped.
	postJSON(t, client, ts.URL+"/api/v1/attendance/check-in", memberToken, map[string]any{})
	checkOut := postJSON(t, client, ts.URL+"/api/v1/attendance/check-out", memberToken, map[string]any{})
	var outPayload map[string]string
	if err := json.Unmarshal(checkOut.Data, &outPayload); err != nil {
		t.Fatalf("failed to decode check-out response: %v", err)
	}
	if outPayload["status"] != "checked_out" {
		t.Fatalf("expected checked_out, got %q", outPayload["status"])
	}

	// Members cannot manage the store.
	postJSONStatus(t, client, ts.URL+"/api/v1/shop/items", memberToken, map[string]any{
		"name": "Sneaky", "price": 1, "stock": 1,
	}, http.StatusForbidden)

	itemResp := postJSON(t, client, ts.URL+"/api/v1/shop/items", adminToken, map[string]any{
		"name":  "Uniform Shirt",
		"price": 50,
		"stock": 2,
	})
	var item map[string]string
	if err := json.Unmarshal(itemResp.Data, &item); err != nil {
		t.Fatalf("failed to decode item response: %v", err)
	}

	idemKey := fmt.Sprintf("purchase-%d", time.Now().UnixNano())
	purchase := postJSONWithHeaders(t, client, ts.URL+"/api/v1/shop/purchases", memberToken, map[string]any{
		"itemId":   item["id"],
		"quantity": 1,
	}, map[string]string{"Idempotency-Key": idemKey})
	var purchased map[string]any
	if err := json.Unmarshal(purchase.Data, &purchased); err != nil {
		t.Fatalf("failed to decode purchase response: %v", err)
	}
	purchaseID, _ := purchased["id"].(string)
	if purchaseID == "" {
		t.Fatal("expected purchase id")
	}

	// Same key and payload replays the stored purchase.
	replay := postJSONWithHeaders(t, client, ts.URL+"/api/v1/shop/purchases", memberToken, map[string]any{
		"itemId":   item["id"],
		"quantity": 1,
	}, map[string]string{"Idempotency-Key": idemKey})
	var replayed map[string]any
	if err := json.Unmarshal(replay.Data, &replayed); err != nil {
		t.Fatalf("failed to decode replay response: %v", err)
	}
	if replayed["id"] != purchaseID {
		t.Fatalf("expected idempotent replay of %s, got %v", purchaseID, replayed["id"])
	}

	approved := putJSON(t, client, ts.URL+"/api/v1/shop/purchases/"+purchaseID+"/status", adminToken, map[string]any{
		"status": "approved",
	})
	var approvedPayload map[string]any
	if err := json.Unmarshal(approved.Data, &approvedPayload); err != nil {
		t.Fatalf("failed to decode approval response: %v", err)
	}
	if approvedPayload["status"] != "approved" {
		t.Fatalf("expected approved purchase, got %v", approvedPayload["status"])
	}

	// Approval books the deduction against the member's ledger.
	now := time.Now().UTC()
	summary := getJSON(t, client, fmt.Sprintf("%s/api/v1/finance/summary?month=%d&year=%d", ts.URL, int(now.Month()), now.Year()), memberToken)
	var totals map[string]float64
	if err := json.Unmarshal(summary.Data, &totals); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if totals["totalDeduction"] != 50 {
		t.Fatalf("expected deduction 50 after approval, got %v", totals["totalDeduction"])
	}

	unread := getJSON(t, client, ts.URL+"/api/v1/notifications/unread-count", memberToken)
	var unreadPayload map[string]int
	if err := json.Unmarshal(unread.Data, &unreadPayload); err != nil {
		t.Fatalf("failed to decode unread count: %v", err)
	}
	if unreadPayload["unread"] == 0 {
		t.Fatal("expected a notification after purchase approval")
	}

	postingResp := postJSON(t, client, ts.URL+"/api/v1/recruiting/postings", adminToken, map[string]any{
		"title":       "Event Staff",
		"description": "Weekend staffing for venue events",
	})
	var posting map[string]string
	if err := json.Unmarshal(postingResp.Data, &posting); err != nil {
		t.Fatalf("failed to decode posting response: %v", err)
	}

	applyResp := postJSON(t, client, ts.URL+"/api/v1/recruiting/postings/"+posting["id"]+"/apply", memberToken, map[string]any{
		"note": "Available every weekend",
	})
	var application map[string]any
	if err := json.Unmarshal(applyResp.Data, &application); err != nil {
		t.Fatalf("failed to decode application response: %v", err)
	}
	applicationID, _ := application["id"].(string)
	if applicationID == "" {
		t.Fatal("expected application id")
	}

	// Duplicate applications are rejected.
	postJSONStatus(t, client, ts.URL+"/api/v1/recruiting/postings/"+posting["id"]+"/apply", memberToken, map[string]any{
		"note": "second try",
	}, http.StatusConflict)

	decideKey := "decide-" + applicationID
	decided := postJSONWithHeaders(t, client, ts.URL+"/api/v1/recruiting/applications/"+applicationID+"/decide", adminToken, map[string]any{
		"decision": "accepted",
	}, map[string]string{"Idempotency-Key": decideKey})
	var decidedPayload map[string]any
	if err := json.Unmarshal(decided.Data, &decidedPayload); err != nil {
		t.Fatalf("failed to decode decision response: %v", err)
	}
	if decidedPayload["status"] != "accepted" {
		t.Fatalf("expected accepted, got %v", decidedPayload["status"])
	}

	// Replaying the decision with the same key returns the stored response,
	// not the already-decided conflict.
	replayedResp := postJSONWithHeaders(t, client, ts.URL+"/api/v1/recruiting/applications/"+applicationID+"/decide", adminToken, map[string]any{
		"decision": "accepted",
	}, map[string]string{"Idempotency-Key": decideKey})
	var replayedPayload map[string]any
	if err := json.Unmarshal(replayedResp.Data, &replayedPayload); err != nil {
		t.Fatalf("failed to decode replayed decision: %v", err)
	}
	if replayedPayload["id"] != decidedPayload["id"] || replayedPayload["status"] != "accepted" {
		t.Fatalf("replay mismatch: %v vs %v", replayedPayload, decidedPayload)
	}

	// Acceptance promotes the interview-stage employee to active.
	emp := getJSON(t, client, ts.URL+"/api/v1/employees/"+memberEmployeeID, adminToken)
	var empPayload map[string]any
	if err := json.Unmarshal(emp.Data, &empPayload); err != nil {
		t.Fatalf("failed to decode employee response: %v", err)
	}
	if empPayload["status"] != "active" {
		t.Fatalf("expected active employee after acceptance, got %v", empPayload["status"])
	}

	// A decided application cannot be decided again.
	postJSONStatus(t, client, ts.URL+"/api/v1/recruiting/applications/"+applicationID+"/decide", adminToken, map[string]any{
		"decision": "rejected",
	}, http.StatusConflict)
}

func TestMemberCannotReadOtherLedgers(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	otherID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("other-%d@example.com", time.Now().UnixNano()), "active")

	memberEmail := fmt.Sprintf("scoped-%d@example.com", time.Now().UnixNano())
	postJSON(t, client, ts.URL+"/api/v1/auth/register", "", map[string]any{
		"email":    memberEmail,
		"password": "Member123!",
		"fullName": "Scoped Member",
	})
	memberToken := login(t, client, ts.URL, memberEmail, "Member123!")

	getJSONStatus(t, client, ts.URL+"/api/v1/finance/summary?employeeId="+otherID, memberToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/employees/"+otherID, memberToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/reports/salary-register", memberToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/audit/events", memberToken, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email, status string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"fullName": "Journey Tester",
		"nickname": "JT",
		"email":    email,
		"status":   status,
		"joinDate": "2026-01-05",
	})
	var payload map[string]string
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode employee response: %v", err)
	}
	if payload["id"] == "" {
		t.Fatal("expected employee id")
	}
	return payload["id"]
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, nil, 0)
}

func postJSONWithHeaders(t *testing.T, client *http.Client, url, token string, body any, headers map[string]string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, headers, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, nil, want)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPut, url, token, body, nil, 0)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, nil, 0)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, nil, want)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, headers map[string]string, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if wantStatus != 0 {
		if resp.StatusCode != wantStatus {
			t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, string(raw))
		}
	} else if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
