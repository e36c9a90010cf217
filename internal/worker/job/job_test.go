package job

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"web3-sniper/internal/worker/submitter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var once, periodic atomic.Int32

	s.RegisterOnceJob("once", func(ctx context.Context) error {
		once.Add(1)
		return nil
	})
	s.RegisterJob("periodic", 10*time.Millisecond, func(ctx context.Context) error {
		periodic.Add(1)
		return errors.New("ignored")
	})
	s.RegisterOnceJob("panics", func(ctx context.Context) error {
		panic("boom")
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return periodic.Load() >= 3 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(stopCtx)

	assert.Equal(t, int32(1), once.Load())
	n := periodic.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, periodic.Load())
}

type stubBalance struct {
	balance *big.Int
	err     error
}

func (s stubBalance) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return s.balance, s.err
}

type staticBuy submitter.BuyConfig

func (s staticBuy) GetConfig() submitter.BuyConfig { return submitter.BuyConfig(s) }

func TestRequiredWei(t *testing.T) {
	// 0.001 BNB + 500000 * 3 gwei = 0.0025 BNB
	required, err := RequiredWei(submitter.DefaultBuyConfig())
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000", required.String())
}

func TestWalletBalanceRun(t *testing.T) {
	wallet := common.HexToAddress("0x01")
	buy := staticBuy(submitter.DefaultBuyConfig())

	ok := NewWalletBalance(stubBalance{balance: big.NewInt(3_000_000_000_000_000)}, wallet, buy, zap.NewNop())
	assert.NoError(t, ok.Run(context.Background()))

	low := NewWalletBalance(stubBalance{balance: big.NewInt(1)}, wallet, buy, zap.NewNop())
	assert.NoError(t, low.Run(context.Background()))

	rpcErr := errors.New("rpc down")
	failing := NewWalletBalance(stubBalance{err: rpcErr}, wallet, buy, zap.NewNop())
	assert.ErrorIs(t, failing.Run(context.Background()), rpcErr)
}
