package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	testCases := []struct {
		amount   string
		decimals int32
		expected string
	}{
		{"0.001", EtherDecimals, "1000000000000000"},
		{"1", EtherDecimals, "1000000000000000000"},
		{"3", GweiDecimals, "3000000000"},
		{"0.1", GweiDecimals, "100000000"},
		{"0", EtherDecimals, "0"},
	}
	for _, tc := range testCases {
		got, err := ParseUnits(tc.amount, tc.decimals)
		require.NoError(t, err, tc.amount)
		assert.Equal(t, tc.expected, got.String(), tc.amount)
	}

	_, err := ToWei("abc")
	assert.Error(t, err)
	_, err = ToWei("-1")
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x5c952063c7fc8610ffdb798152d69f0b9550762b", NormalizeAddress(" 0x5c952063c7fc8610FFDB798152D69F0B9550762b "))
	checksummed := ChecksumAddress("0x5c952063c7fc8610ffdb798152d69f0b9550762b")
	assert.Equal(t, "0x5c952063c7fc8610ffdb798152d69f0b9550762b", NormalizeAddress(checksummed))
	assert.Empty(t, ChecksumAddress("  "))
	assert.Equal(t, "0x5c952063...", ShortAddress("0x5c952063c7fc8610ffdb798152d69f0b9550762b"))
}

func TestMulRatio(t *testing.T) {
	got := MulRatio(big.NewInt(5_000_000_000), decimal.RequireFromString("1.2"))
	assert.Equal(t, int64(6_000_000_000), got.Int64())

	assert.Equal(t, int64(7), MaxBig(big.NewInt(7), big.NewInt(3)).Int64())
	assert.Equal(t, int64(9), MaxBig(big.NewInt(7), big.NewInt(9)).Int64())
	assert.Equal(t, "0.001", AdjustDecimals(big.NewInt(1_000_000_000_000_000), 18).String())
}
