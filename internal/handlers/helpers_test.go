package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/thuanthao21/baocaojava-sangt6/internal/orders"
)

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("parsePaginationParams returned error: %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page, limit)
	}
}

func TestParsePaginationParamsExplicit(t *testing.T) {
	page, limit, err := parsePaginationParams("3", "50")
	if err != nil {
		t.Fatalf("parsePaginationParams returned error: %v", err)
	}
	if page != 3 || limit != 50 {
		t.Fatalf("expected 3/50, got %d/%d", page, limit)
	}
}

func TestParsePaginationParamsRejectsInvalid(t *testing.T) {
	tests := []struct {
		page  string
		limit string
	}{
		{"0", ""},
		{"-1", ""},
		{"abc", ""},
		{"", "0"},
		{"", "nope"},
	}
	for _, tt := range tests {
		if _, _, err := parsePaginationParams(tt.page, tt.limit); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tt.page, tt.limit)
		}
	}
}

func TestRespondOrderErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("create order: %w", orders.ErrUnauthenticated), http.StatusUnauthorized},
		{fmt.Errorf("not yours: %w", orders.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("order missing: %w", orders.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("bad status: %w", orders.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("not pending: %w", orders.ErrInvalidState), http.StatusBadRequest},
		{fmt.Errorf("socket closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)

		respondOrderError(c, "TEST", tt.err)
		if recorder.Code != tt.status {
			t.Fatalf("expected status %d for %v, got %d", tt.status, tt.err, recorder.Code)
		}
	}
}

func TestLowerCamel(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Username":        "username",
		"ShippingAddress": "shippingAddress",
		"already":         "already",
	}
	for input, want := range tests {
		if got := lowerCamel(input); got != want {
			t.Fatalf("lowerCamel(%q) = %q, want %q", input, got, want)
		}
	}
}
