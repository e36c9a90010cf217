package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	EtherDecimals = 18
	GweiDecimals  = 9
)

// NormalizeAddress 地址统一为小写，用于集合比较
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ChecksumAddress 将 EVM 地址转换为 EIP-55 Checksum 格式
func ChecksumAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")
	return common.HexToAddress("0x" + addr).Hex()
}

// ShortAddress 截断地址用于日志
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:10] + "..."
}

// ParseUnits 十进制字符串转最小单位, 如 "0.001" ether -> 1e15 wei
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: negative", amount)
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// ToWei ether 数量转 wei
func ToWei(amount string) (*big.Int, error) {
	return ParseUnits(amount, EtherDecimals)
}

// GweiToWei gwei 数量转 wei
func GweiToWei(amount string) (*big.Int, error) {
	return ParseUnits(amount, GweiDecimals)
}

// AdjustDecimals 调整精度显示
func AdjustDecimals(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// MulRatio value * ratio, 结果向下取整
func MulRatio(value *big.Int, ratio decimal.Decimal) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return decimal.NewFromBigInt(value, 0).Mul(ratio).Truncate(0).BigInt()
}

// MaxBig 返回较大值
func MaxBig(a, b *big.Int) *big.Int {
	if a == nil {
		return b
	}
	if b == nil || a.Cmp(b) >= 0 {
		return a
	}
	return b
}
