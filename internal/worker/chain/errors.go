package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrorKind 提交失败的分类
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindInsufficientFunds
	KindNonce
	KindCredential
	KindGas
	KindReverted
)

func (k ErrorKind) String() string {
	switch k {
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNonce:
		return "nonce"
	case KindCredential:
		return "credential"
	case KindGas:
		return "gas"
	case KindReverted:
		return "reverted"
	default:
		return "other"
	}
}

// TxError 带明确分类的错误
type TxError struct {
	Kind ErrorKind
	Err  error
}

func (e *TxError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// 节点返回的错误文本没有统一错误码，按顺序匹配，先命中先返回
var kindTokens = []struct {
	kind   ErrorKind
	tokens []string
}{
	{KindInsufficientFunds, []string{"insufficient funds", "insufficient balance"}},
	{KindNonce, []string{"nonce"}},
	{KindCredential, []string{"private_key", "private key", "invalid sender"}},
	{KindGas, []string{"gas", "underpriced"}},
	{KindReverted, []string{"revert"}},
}

// Classify 优先取 TxError 的分类，其次 rpc revert data，最后按错误文本匹配
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	var txErr *TxError
	if errors.As(err, &txErr) && txErr.Kind != KindOther {
		return txErr.Kind
	}

	msg := strings.ToLower(err.Error())
	for _, group := range kindTokens {
		for _, token := range group.tokens {
			if strings.Contains(msg, token) {
				return group.kind
			}
		}
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return KindReverted
	}
	return KindOther
}

// Retryable 余额不足和私钥问题重试无意义
func Retryable(kind ErrorKind) bool {
	switch kind {
	case KindInsufficientFunds, KindCredential:
		return false
	default:
		return true
	}
}

// Hint 给操作者的处理建议
func Hint(kind ErrorKind) string {
	switch kind {
	case KindInsufficientFunds:
		return "Ensure you have sufficient BNB for gas + purchase amount"
	case KindNonce:
		return "Nonce issue detected, nonce cache reset"
	case KindCredential:
		return "Check WALLET_PRIVATE_KEY (should not include 0x prefix)"
	case KindGas:
		return "Try increasing buy.gas_price_gwei for faster inclusion"
	case KindReverted:
		return "Transaction was reverted. Check token address and contract state"
	default:
		return ""
	}
}
