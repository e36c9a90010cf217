package model

import "time"

// PurchaseResult 一次买入调用的结果, 失败时 ErrorKind/Detail/Hint 有值
type PurchaseResult struct {
	Success   bool          `json:"success"`
	TxHash    string        `json:"txHash,omitempty"`
	ErrorKind string        `json:"errorKind,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Hint      string        `json:"hint,omitempty"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
}
