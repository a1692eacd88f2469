package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	sentinel := New(CodeFailedPrecondition, "already_in_state", "already in state")

	t.Run("SameCodeAndReason", func(t *testing.T) {
		err := Newf(CodeFailedPrecondition, "already_in_state", "order %s is already %s", "o-1", "shipped")
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("DifferentReason", func(t *testing.T) {
		err := New(CodeFailedPrecondition, "invalid_transition", "nope")
		assert.NotErrorIs(t, err, sentinel)
	})

	t.Run("CodeOnlySentinel", func(t *testing.T) {
		anyPrecondition := New(CodeFailedPrecondition, "", "")
		err := New(CodeFailedPrecondition, "invalid_transition", "nope")
		assert.ErrorIs(t, err, anyPrecondition)
	})

	t.Run("Wrapped", func(t *testing.T) {
		err := fmt.Errorf("service: %w", New(CodeFailedPrecondition, "already_in_state", "x"))
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("PlainError", func(t *testing.T) {
		assert.NotErrorIs(t, errors.New("already in state"), sentinel)
	})
}

func TestReasonOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(CodeRejected, "expired", "promo expired"))
	assert.Equal(t, "expired", ReasonOf(err))
	assert.Equal(t, "", ReasonOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "InvalidArgument", err: InvalidArgument("quantity must not be negative"), want: http.StatusBadRequest},
		{name: "Rejected", err: New(CodeRejected, "not_found", "unknown promo"), want: http.StatusUnprocessableEntity},
		{name: "FailedPrecondition", err: New(CodeFailedPrecondition, "invalid_transition", "x"), want: http.StatusConflict},
		{name: "NotFound", err: NotFound("order %s not found", "o-9"), want: http.StatusNotFound},
		{name: "Wrapped", err: fmt.Errorf("svc: %w", NotFound("x")), want: http.StatusNotFound},
		{name: "Internal", err: errors.New("redis down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "INVALID_ARGUMENT", CodeInvalidArgument.String())
	assert.Equal(t, "REJECTED", CodeRejected.String())
	assert.Equal(t, "FAILED_PRECONDITION", CodeFailedPrecondition.String())
	assert.Equal(t, "NOT_FOUND", CodeNotFound.String())
	assert.Equal(t, "UNKNOWN", Code(42).String())
}
