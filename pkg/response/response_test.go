package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSuccess_OmitsErrorAndMeta(t *testing.T) {
	resp := Success(map[string]string{"id": "h-1"})

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["success"] != true {
		t.Errorf("Expected success=true, got %v", parsed["success"])
	}
	if _, ok := parsed["error"]; ok {
		t.Error("Expected error field to be omitted")
	}
	if _, ok := parsed["meta"]; ok {
		t.Error("Expected meta field to be omitted")
	}
}

func TestErrorWithDetails(t *testing.T) {
	resp := ErrorWithDetails(ErrCodeNotFound, "Route not found", map[string]string{"path": "/api/nope"})

	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Data != nil {
		t.Error("Expected data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error to be set")
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected code %s, got %s", ErrCodeNotFound, resp.Error.Code)
	}
	if resp.Error.Details["path"] != "/api/nope" {
		t.Errorf("Expected path detail, got %v", resp.Error.Details["path"])
	}
}

func TestWithRequestID(t *testing.T) {
	resp := InternalError("").WithRequestID("req-42")
	if resp.Meta == nil || resp.Meta.RequestID != "req-42" {
		t.Fatalf("Expected request id in meta, got %+v", resp.Meta)
	}

	resp = InternalError("").WithRequestID("")
	if resp.Meta != nil {
		t.Error("Expected meta to stay nil for an empty request id")
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		limit         int
		expectedPages int
	}{
		{"exact division", 20, 10, 2},
		{"with remainder", 25, 10, 3},
		{"less than page", 5, 10, 1},
		{"zero items", 0, 10, 0},
		{"single item", 1, 10, 1},
		{"zero limit", 7, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(2, tt.limit, tt.total)
			if p.Pages != tt.expectedPages {
				t.Errorf("Expected %d pages, got %d", tt.expectedPages, p.Pages)
			}
			if p.Page != 2 || p.Limit != tt.limit || p.Total != tt.total {
				t.Errorf("Unexpected pagination %+v", p)
			}
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusBadRequest},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrCodeInternalError, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError}, // default
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status := GetHTTPStatus(tt.code)
			if status != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, status)
			}
		})
	}
}

func TestCommonErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) *Response
		message string
		code    string
	}{
		{"BadRequest", BadRequest, "bad input", ErrCodeBadRequest},
		{"Unauthorized", Unauthorized, "", ErrCodeUnauthorized},
		{"Forbidden", Forbidden, "", ErrCodeForbidden},
		{"NotFound", NotFound, "", ErrCodeNotFound},
		{"Conflict", Conflict, "", ErrCodeConflict},
		{"InternalError", InternalError, "", ErrCodeInternalError},
		{"TooManyRequests", TooManyRequests, "", ErrCodeTooManyRequests},
		{"ServiceUnavailable", ServiceUnavailable, "", ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.fn(tt.message)
			if resp.Success {
				t.Error("Expected success to be false")
			}
			if resp.Error == nil {
				t.Fatal("Expected error to be set")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, resp.Error.Code)
			}
			if resp.Error.Message == "" {
				t.Error("Expected message to be set (with default)")
			}
		})
	}
}

func TestValidationFailed(t *testing.T) {
	resp := ValidationFailed(map[string]string{
		"slug": "must match ^[a-z0-9-]+$",
		"name": "too short",
	})

	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeValidationFailed, resp.Error.Code)
	}
	if len(resp.Error.Details) != 2 {
		t.Errorf("Expected 2 details, got %d", len(resp.Error.Details))
	}
}
