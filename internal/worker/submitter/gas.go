package submitter

import (
	"context"
	"math/big"

	"web3-sniper/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GasBoost 网络 gas price 加价 20%
var GasBoost = decimal.RequireFromString("1.2")

type gasPriceSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// gasPrice 未开启加价时用配置值；开启时取 max(网络价 * 1.2, 配置值)，查询失败回退配置值
func gasPrice(ctx context.Context, src gasPriceSource, cfg BuyConfig, tl *zap.Logger) *big.Int {
	floor, err := utils.GweiToWei(cfg.GasPriceGwei)
	if err != nil {
		floor = new(big.Int)
	}
	if !cfg.UseHighPriorityGas {
		return floor
	}

	current, err := src.SuggestGasPrice(ctx)
	if err != nil || current == nil {
		tl.Warn("⚠️ Failed to get current gas price, using configured value", zap.Error(err))
		return floor
	}

	// gwei 保留两位小数
	boosted := decimal.NewFromBigInt(current, -utils.GweiDecimals).Mul(GasBoost).Round(2).Shift(utils.GweiDecimals).BigInt()
	return utils.MaxBig(boosted, floor)
}
