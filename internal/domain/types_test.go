package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{
			name:  "valid lowercase address",
			input: "0x5aeda56215b167893e80b4fe645ba6d5bab767de",
		},
		{
			name:  "valid checksummed address",
			input: "0x5AEDA56215b167893e80B4fE645BA6d5Bab767DE",
		},
		{
			name:        "missing 0x prefix",
			input:       "5aeda56215b167893e80b4fe645ba6d5bab767de",
			expectError: true,
		},
		{
			name:        "too short",
			input:       "0x5aeda5",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "non-hex characters",
			input:       "0xzzeda56215b167893e80b4fe645ba6d5bab767de",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x5AEDA56215b167893e80B4fE645BA6d5Bab767DE", addr.Hex())
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    string
	}{
		{
			name:     "zero",
			input:    "0",
			expected: "0",
		},
		{
			name:     "one ether in wei",
			input:    "1000000000000000000",
			expected: "1000000000000000000",
		},
		{
			name:     "78 digit value",
			input:    "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			expected: "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		},
		{
			name:        "negative",
			input:       "-1",
			expectError: true,
		},
		{
			name:        "not a number",
			input:       "1.5",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount.String())
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(150)
	b := NewAmount(50)

	assert.Equal(t, "200", a.Add(b).String())
	assert.Equal(t, "100", a.Sub(b).String())
	assert.Equal(t, "300", a.MulUint64(2).String())
	assert.Equal(t, "75", a.DivUint64(2).String())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(NewAmount(150)))
}

func TestAmountArithmeticDoesNotMutateOperands(t *testing.T) {
	a := NewAmount(10)
	b := NewAmount(3)

	_ = a.Add(b)
	_ = a.Sub(b)
	_ = a.MulUint64(7)

	assert.Equal(t, "10", a.String())
	assert.Equal(t, "3", b.String())
}

func TestAmountSubUnderflowPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAmount(1).Sub(NewAmount(2))
	})
}

func TestAmountJSONRoundTrip(t *testing.T) {
	amount, err := ParseAmount("1010000000000000000")
	require.NoError(t, err)

	data, err := json.Marshal(amount)
	require.NoError(t, err)
	assert.Equal(t, `"1010000000000000000"`, string(data))

	var decoded Amount
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, amount.Cmp(decoded))
}

func TestAmountScan(t *testing.T) {
	var amount Amount
	require.NoError(t, amount.Scan("42"))
	assert.Equal(t, "42", amount.String())

	require.NoError(t, amount.Scan([]byte("100")))
	assert.Equal(t, "100", amount.String())

	require.NoError(t, amount.Scan(int64(7)))
	assert.Equal(t, "7", amount.String())

	assert.Error(t, amount.Scan(3.14))
}
