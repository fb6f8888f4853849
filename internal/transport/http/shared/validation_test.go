package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidatorCollectsIssuesSorted(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name is required")
	v.Positive("amount", -1, "amount must be positive")
	v.Enum("status", "bogus", []string{"open", "closed"}, "unknown status")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Field != "amount" || issues[1].Field != "name" || issues[2].Field != "status" {
		t.Fatalf("expected issues sorted by field, got %+v", issues)
	}
}

func TestValidatorEnumIgnoresEmptyAndCase(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"open"}, "unknown status")
	v.Enum("status", "OPEN", []string{"open"}, "unknown status")
	if v.HasIssues() {
		t.Fatalf("expected no issues, got %+v", v.Issues())
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Date("joinDate", "2026-02-31x"); ok {
		t.Fatal("expected invalid date to fail")
	}
	if !v.HasIssues() {
		t.Fatal("expected issue for invalid date")
	}

	v2 := NewValidator()
	parsed, ok := v2.Date("joinDate", "2026-03-01")
	if !ok || parsed.IsZero() {
		t.Fatalf("expected valid date, got ok=%v %v", ok, parsed)
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	if v.Reject(httptest.NewRecorder(), "req-1") {
		t.Fatal("expected no rejection without issues")
	}

	v.Required("email", "", "email is required")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if envelope.Success || envelope.Error.Code != "validation_error" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if len(envelope.Error.Details.Fields) != 1 || envelope.Error.Details.Fields[0].Field != "email" {
		t.Fatalf("unexpected details: %+v", envelope.Error.Details.Fields)
	}
}

func TestParseDate(t *testing.T) {
	if parsed, err := ParseDate("2026-04-05"); err != nil || parsed.Year() != 2026 || parsed.Month() != 4 {
		t.Fatalf("unexpected result: %v %v", parsed, err)
	}
	if parsed, err := ParseDate("2026-04-05T10:30:00Z"); err != nil || parsed.Hour() != 10 {
		t.Fatalf("unexpected RFC3339 result: %v %v", parsed, err)
	}
	if parsed, err := ParseDate(""); err != nil || !parsed.IsZero() {
		t.Fatalf("expected zero time for empty input, got %v %v", parsed, err)
	}
	if _, err := ParseDate("05/04/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	page := ParsePagination(req, 50, 200)
	if page.Limit != 200 || page.Offset != 20 {
		t.Fatalf("unexpected pagination: %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=-5&offset=bogus", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("expected defaults for bad input, got %+v", page)
	}
}
