package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
		message  string
	}{
		{NewValidationError("Invalid product id"), http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id"},
		{NewNotFoundError("Product not found"), http.StatusNotFound, "NOT_FOUND", "Product not found"},
		{NewInsufficientStockError("Insufficient stock"), http.StatusBadRequest, "INSUFFICIENT_STOCK", "Insufficient stock"},
		{NewConflictError("dup"), http.StatusConflict, "CONFLICT", "dup"},
		{NewUnauthorizedError("no"), http.StatusUnauthorized, "UNAUTHORIZED", "no"},
		{NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN", "no"},
		{NewRateLimitError("slow down"), http.StatusTooManyRequests, "RATE_LIMITED", "slow down"},
		{NewDBError("failed to find product", errors.New("conn refused")), http.StatusInternalServerError, "INTERNAL_ERROR", "Server error"},
		{errors.New("plain"), http.StatusInternalServerError, "UNKNOWN_ERROR", "Server error"},
	}
	for _, tc := range cases {
		status, category, message := MapToHTTPStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.category, category, tc.err.Error())
		assert.Equal(t, tc.message, message, tc.err.Error())
	}
}

func TestMapToHTTPStatus_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("Product not found"))
	status, category, _ := MapToHTTPStatus(wrapped)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", category)
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("conn refused")
	err := NewDBError("failed to find product", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Erro Interno: failed to find product (DB): conn refused", err.Error())
}
