package submitter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"web3-sniper/internal/worker/chain"
	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/monitor"
	"web3-sniper/pkg/logger"
	"web3-sniper/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tracerName = "web3-sniper/submitter"

// Backend 提交交易用到的链接口
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Options struct {
	Client     Backend
	PrivateKey string // 不带 0x
	Wallet     string
	Contract   common.Address
	ChainID    *big.Int
	Overrides  BuyConfigPatch
}

// Submitter 构造、签名、广播买入交易，管理 nonce、gas 和重试
type Submitter struct {
	tl       *zap.Logger
	client   Backend
	signer   *chain.Signer
	wallet   common.Address
	contract common.Address
	nonce    *NonceState

	mu  sync.Mutex
	cfg atomic.Pointer[BuyConfig]

	backoffUnit time.Duration
	receiptPoll time.Duration
}

// New 校验私钥与钱包，失败返回错误，调用方应终止启动
func New(opts Options, tl *zap.Logger) (*Submitter, error) {
	if err := ValidateCredentials(opts.PrivateKey, opts.Wallet); err != nil {
		return nil, err
	}
	if opts.Client == nil {
		return nil, errors.New("submitter: nil chain client")
	}
	chainID := opts.ChainID
	if chainID == nil {
		chainID = big.NewInt(chain.DefaultChainID)
	}

	signer, err := chain.NewSigner(opts.PrivateKey, chainID)
	if err != nil {
		return nil, err
	}
	wallet := common.HexToAddress(opts.Wallet)
	if signer.Address() != wallet {
		return nil, ErrWalletMismatch
	}

	cfg := DefaultBuyConfig().Apply(opts.Overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Submitter{
		tl:          tl,
		client:      opts.Client,
		signer:      signer,
		wallet:      wallet,
		contract:    opts.Contract,
		nonce:       NewNonceState(NonceFreshness),
		backoffUnit: 500 * time.Millisecond,
		receiptPoll: time.Second,
	}
	s.cfg.Store(&cfg)
	return s, nil
}

func (s *Submitter) Wallet() common.Address {
	return s.wallet
}

// GetConfig 返回副本
func (s *Submitter) GetConfig() BuyConfig {
	return *s.cfg.Load()
}

// UpdateConfig 只替换 patch 中非 nil 的字段，校验失败保持原配置
func (s *Submitter) UpdateConfig(patch BuyConfigPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Load().Apply(patch)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg.Store(&next)
	s.tl.Info("Buy configuration updated",
		zap.String("amount_bnb", next.AmountBNB),
		zap.String("gas_price_gwei", next.GasPriceGwei),
		zap.Int("max_retries", next.MaxRetries),
		zap.Bool("use_high_priority_gas", next.UseHighPriorityGas),
	)
	return nil
}

// SubmitPurchase 买入 token，recipient 为空时发给自己的钱包
// 余额不足和私钥错误立即返回，nonce 错误重置缓存后重试，其余错误按 attempt*500ms 退避重试
func (s *Submitter) SubmitPurchase(ctx context.Context, token common.Address, recipient *common.Address) model.PurchaseResult {
	start := time.Now()
	cfg := s.GetConfig()
	to := s.wallet
	if recipient != nil {
		to = *recipient
	}

	ctx, span := logger.StartSpan(ctx, tracerName, "submit_purchase")
	defer span.End()
	span.SetAttributes(attribute.String("token", token.Hex()), attribute.String("recipient", to.Hex()))

	tl := logger.NewLoggerWithTrace(ctx, s.tl).With(zap.String("token", token.Hex()))
	tl.Info("Initiating buy", zap.String("recipient", to.Hex()), zap.String("amount_bnb", cfg.AmountBNB))

	result := model.PurchaseResult{}
	finish := func(kind chain.ErrorKind, detail string) model.PurchaseResult {
		result.Elapsed = time.Since(start)
		if result.Success {
			monitor.PurchaseResults.WithLabelValues("success", "").Inc()
		} else {
			result.ErrorKind = kind.String()
			result.Detail = detail
			result.Hint = chain.Hint(kind)
			monitor.PurchaseResults.WithLabelValues("failure", result.ErrorKind).Inc()
			span.SetAttributes(attribute.String("error_kind", result.ErrorKind))
		}
		monitor.PurchaseDuration.Observe(result.Elapsed.Seconds())
		return result
	}

	amount, err := utils.ToWei(cfg.AmountBNB)
	if err != nil {
		return finish(chain.KindOther, err.Error())
	}
	minOut, err := parseMinOut(cfg.MinTokensOut)
	if err != nil {
		return finish(chain.KindOther, err.Error())
	}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			tl.Info("🔄 Retry attempt", zap.Int("attempt", attempt), zap.Int("max", cfg.MaxRetries))
		}
		result.Attempts = attempt
		monitor.PurchaseAttempts.Inc()

		hash, err := s.send(ctx, cfg, token, to, amount, minOut)
		if err == nil {
			result.Success = true
			result.TxHash = hash.Hex()
			tl.Info("⚡ Transaction sent",
				zap.String("tx_hash", result.TxHash),
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("attempt", attempt),
			)
			return finish(chain.KindOther, "")
		}

		kind := chain.Classify(err)
		tl.Error("❌ Buy attempt failed", zap.Int("attempt", attempt), zap.Stringer("kind", kind), zap.Error(err))

		// 已广播但回执未确认，重试会重复买入
		if hash != (common.Hash{}) && kind != chain.KindReverted {
			result.TxHash = hash.Hex()
			return finish(kind, fmt.Sprintf("transaction sent but not confirmed: %v", err))
		}

		if !chain.Retryable(kind) {
			tl.Error("💡 Tip: " + chain.Hint(kind))
			return finish(kind, stopDetail(kind, err))
		}

		switch kind {
		case chain.KindNonce:
			tl.Warn("⚠️ Nonce issue detected, resetting cache")
			s.nonce.Invalidate()
		case chain.KindGas, chain.KindReverted:
			tl.Warn("💡 Tip: " + chain.Hint(kind))
		}

		if attempt == cfg.MaxRetries {
			return finish(kind, fmt.Sprintf("failed after %d attempts: %v", cfg.MaxRetries, err))
		}

		delay := time.Duration(attempt) * s.backoffUnit
		tl.Info("⏳ Retrying", zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return finish(kind, fmt.Sprintf("aborted after %d attempts: %v", attempt, ctx.Err()))
		case <-timer.C:
		}
	}

	return finish(chain.KindOther, "max retries exceeded")
}

// send 单次尝试：nonce -> gas -> 构造 -> 签名 -> 广播 [-> 等回执]
func (s *Submitter) send(ctx context.Context, cfg BuyConfig, token, recipient common.Address, amount, minOut *big.Int) (common.Hash, error) {
	nonce, err := s.nonce.Reserve(ctx, func(ctx context.Context) (uint64, error) {
		return s.client.PendingNonceAt(ctx, s.wallet)
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("query pending transaction count: %w", err)
	}

	price := gasPrice(ctx, s.client, cfg, s.tl)

	data, err := chain.PackBuy(token, recipient, amount, minOut)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack buy call: %w", err)
	}

	contract := s.contract
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &contract,
		Value:    amount,
		Gas:      cfg.GasLimit,
		GasPrice: price,
		Data:     data,
	})
	signed, err := s.signer.Sign(tx)
	if err != nil {
		return common.Hash{}, err
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	hash := signed.Hash()

	if cfg.WaitReceipt {
		waitCtx, cancel := context.WithTimeout(ctx, cfg.ReceiptTimeout)
		defer cancel()
		if _, err := chain.WaitMined(waitCtx, s.client, hash, s.receiptPoll); err != nil {
			return hash, err
		}
	}
	return hash, nil
}

// stopDetail 不可重试错误的结果说明
func stopDetail(kind chain.ErrorKind, err error) string {
	switch kind {
	case chain.KindInsufficientFunds:
		return "Insufficient funds. Check your BNB balance."
	case chain.KindCredential:
		return "Invalid private key configuration"
	default:
		return err.Error()
	}
}
