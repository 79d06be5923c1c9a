package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: quantity", apperrors.ErrValidation), http.StatusBadRequest},
		{"entry set", fmt.Errorf("%w: does not net to zero", apperrors.ErrInvalidEntrySet), http.StatusBadRequest},
		{"insufficient", apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("%w: order", apperrors.ErrNotFound), http.StatusNotFound},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"duplicate", fmt.Errorf("%w: key", apperrors.ErrDuplicate), http.StatusConflict},
		{"retryable", fmt.Errorf("%w: lock timeout", apperrors.ErrRetryable), http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
