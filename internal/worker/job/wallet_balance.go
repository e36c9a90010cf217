package job

import (
	"context"
	"math/big"

	"web3-sniper/internal/worker/monitor"
	"web3-sniper/internal/worker/submitter"
	"web3-sniper/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type balanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type buyConfigSource interface {
	GetConfig() submitter.BuyConfig
}

// WalletBalance 定时检查钱包余额是否够一次买入
type WalletBalance struct {
	client balanceReader
	wallet common.Address
	buy    buyConfigSource
	tl     *zap.Logger
}

func NewWalletBalance(client balanceReader, wallet common.Address, buy buyConfigSource, logger *zap.Logger) *WalletBalance {
	return &WalletBalance{client: client, wallet: wallet, buy: buy, tl: logger}
}

// RequiredWei 买入金额 + gasLimit * gas 下限
func RequiredWei(cfg submitter.BuyConfig) (*big.Int, error) {
	amount, err := utils.ToWei(cfg.AmountBNB)
	if err != nil {
		return nil, err
	}
	price, err := utils.GweiToWei(cfg.GasPriceGwei)
	if err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(cfg.GasLimit))
	return fee.Add(fee, amount), nil
}

func (w *WalletBalance) Run(ctx context.Context) error {
	balance, err := w.client.BalanceAt(ctx, w.wallet, nil)
	if err != nil {
		return err
	}
	bnb := utils.AdjustDecimals(balance, utils.EtherDecimals)
	monitor.WalletBalance.Set(bnb.InexactFloat64())

	required, err := RequiredWei(w.buy.GetConfig())
	if err != nil {
		return err
	}
	if balance.Cmp(required) < 0 {
		w.tl.Warn("⚠️ Wallet balance below one purchase",
			zap.String("wallet", w.wallet.Hex()),
			zap.String("balance_bnb", bnb.String()),
			zap.String("required_bnb", utils.AdjustDecimals(required, utils.EtherDecimals).String()),
		)
		return nil
	}
	w.tl.Debug("Wallet balance", zap.String("wallet", w.wallet.Hex()), zap.String("balance_bnb", bnb.String()))
	return nil
}
