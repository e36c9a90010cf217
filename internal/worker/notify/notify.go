package notify

import (
	"context"

	"web3-sniper/internal/worker/model"
)

// Alerter 命中白名单和买入结果的通知
type Alerter interface {
	TokenAlert(ctx context.Context, ev model.TokenCreateEvent)
	PurchaseResult(ctx context.Context, ev model.TokenCreateEvent, res model.PurchaseResult)
}

// Multi 依次调用所有 Alerter
type Multi []Alerter

func (m Multi) TokenAlert(ctx context.Context, ev model.TokenCreateEvent) {
	for _, a := range m {
		a.TokenAlert(ctx, ev)
	}
}

func (m Multi) PurchaseResult(ctx context.Context, ev model.TokenCreateEvent, res model.PurchaseResult) {
	for _, a := range m {
		a.PurchaseResult(ctx, ev, res)
	}
}
