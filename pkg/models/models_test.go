package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "customer", want: RoleCustomer},
		{in: "Admin", wantErr: true},
		{in: "", wantErr: true},
		{in: "guest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCartItemSubtotal(t *testing.T) {
	item := CartItem{Price: decimal.RequireFromString("2.15"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("6.45").Equal(item.Subtotal()))
}

func TestValidPrice(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "0", want: true},
		{in: "10", want: true},
		{in: "120.5", want: true},
		{in: "1.23", want: true},
		{in: "1.230", want: true},
		{in: "1.234", want: false},
		{in: "-1", want: false},
		{in: "9999999999.99", want: true},
		{in: "10000000000", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPrice(decimal.RequireFromString(tt.in)))
		})
	}
}
