package notify

import (
	"context"

	"web3-sniper/internal/worker/model"

	"go.uber.org/zap"
)

type LogAlerter struct {
	tl *zap.Logger
}

func NewLogAlerter(tl *zap.Logger) *LogAlerter {
	return &LogAlerter{tl: tl}
}

func (a *LogAlerter) TokenAlert(ctx context.Context, ev model.TokenCreateEvent) {
	a.tl.Info("🚨 WHITELISTED CREATOR DETECTED",
		zap.String("symbol", ev.Symbol),
		zap.String("name", ev.Name),
		zap.String("token", ev.TokenAddress),
		zap.String("creator", ev.Creator),
		zap.String("tx", ev.TransactionHash),
		zap.Uint64("block", ev.BlockNumber),
		zap.Time("timestamp", ev.Timestamp),
	)
}

func (a *LogAlerter) PurchaseResult(ctx context.Context, ev model.TokenCreateEvent, res model.PurchaseResult) {
	if res.Success {
		a.tl.Info("✅ BUY SUCCESS",
			zap.String("symbol", ev.Symbol),
			zap.String("token", ev.TokenAddress),
			zap.String("tx", res.TxHash),
			zap.Int("attempts", res.Attempts),
			zap.Duration("elapsed", res.Elapsed),
		)
		return
	}
	a.tl.Error("❌ BUY FAILED",
		zap.String("symbol", ev.Symbol),
		zap.String("token", ev.TokenAddress),
		zap.String("kind", res.ErrorKind),
		zap.String("error", res.Detail),
		zap.String("hint", res.Hint),
		zap.Int("attempts", res.Attempts),
	)
}
