package domain_test

import (
	"math"
	"testing"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAddDelta(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		delta   int64
		want    int64
		ok      bool
	}{
		{name: "credit", balance: 10, delta: 5, want: 15, ok: true},
		{name: "debit below zero", balance: 10, delta: -15, want: -5, ok: true},
		{name: "up to max", balance: math.MaxInt64 - 1, delta: 1, want: math.MaxInt64, ok: true},
		{name: "past max", balance: math.MaxInt64, delta: 1},
		{name: "two max credits", balance: math.MaxInt64, delta: math.MaxInt64},
		{name: "down to min", balance: math.MinInt64 + 1, delta: -1, want: math.MinInt64, ok: true},
		{name: "past min", balance: math.MinInt64, delta: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.AddDelta(tt.balance, tt.delta)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
