package main

import (
	"context"
	"flag"
	"math/big"
	"os"
	"time"

	"web3-sniper/internal/worker/config"
	"web3-sniper/internal/worker/job"
	"web3-sniper/internal/worker/submitter"
	"web3-sniper/pkg/evm_client"
	"web3-sniper/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// 一次性任务：手动买入指定 token，或只检查钱包余额

func main() {
	tokenAddr := flag.String("token", "", "token address to buy")
	recipientAddr := flag.String("recipient", "", "recipient address, defaults to the wallet")
	balanceOnly := flag.Bool("balance", false, "only check wallet balance")
	flag.Parse()

	startTime := time.Now()
	cfg := config.InitConfig()

	logger.InitTrace("web3-sniper", "script")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	rootLogger := logger.NewLogger("script")
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	if !*balanceOnly && !common.IsHexAddress(*tokenAddr) {
		tl.Error("-token must be a valid address", zap.String("token", *tokenAddr))
		os.Exit(2)
	}

	client, err := evm_client.Dial(ctx, cfg.Chain.RpcURL, time.Duration(cfg.Chain.DialTimeout)*time.Second)
	if err != nil {
		tl.Error("Failed to connect rpc", zap.Error(err))
		os.Exit(1)
	}
	defer client.Close()

	sub, err := submitter.New(submitter.Options{
		Client:     client,
		PrivateKey: cfg.Wallet.PrivateKey,
		Wallet:     cfg.Wallet.Address,
		Contract:   common.HexToAddress(cfg.Chain.Contract),
		ChainID:    big.NewInt(cfg.Chain.ChainID),
		Overrides:  submitter.PatchFromConfig(cfg.Buy),
	}, tl)
	if err != nil {
		tl.Error("Invalid wallet configuration", zap.Error(err))
		os.Exit(1)
	}

	if err := job.NewWalletBalance(client, sub.Wallet(), sub, tl).Run(ctx); err != nil {
		tl.Error("Failed to check balance", zap.Error(err))
		os.Exit(1)
	}
	if *balanceOnly {
		return
	}

	var recipient *common.Address
	if common.IsHexAddress(*recipientAddr) {
		addr := common.HexToAddress(*recipientAddr)
		recipient = &addr
	}

	res := sub.SubmitPurchase(ctx, common.HexToAddress(*tokenAddr), recipient)
	if !res.Success {
		tl.Error("❌ Manual buy failed",
			zap.String("kind", res.ErrorKind),
			zap.String("detail", res.Detail),
			zap.String("hint", res.Hint),
			zap.String("tx_hash", res.TxHash),
		)
		os.Exit(1)
	}
	tl.Info("✅ Manual buy sent",
		zap.String("tx_hash", res.TxHash),
		zap.Int("attempts", res.Attempts),
		zap.Duration("taken_time", time.Since(startTime)),
	)
}
