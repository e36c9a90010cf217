package submitter

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"web3-sniper/internal/worker/chain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu         sync.Mutex
	nonce      uint64
	nonceCalls int
	gasPrice   *big.Int
	sendErrs   []error
	sent       []*types.Transaction
	receipt    *types.Receipt
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonceCalls++
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return nil, errors.New("gas oracle unavailable")
	}
	return f.gasPrice, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	idx := len(f.sent) - 1
	if idx < len(f.sendErrs) {
		return f.sendErrs[idx]
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

var testContract = common.HexToAddress(chain.DefaultContract)

func newTestSubmitter(t *testing.T, backend *fakeBackend, patch BuyConfigPatch) *Submitter {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	s, err := New(Options{
		Client:     backend,
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		Wallet:     crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Contract:   testContract,
		ChainID:    big.NewInt(chain.DefaultChainID),
		Overrides:  patch,
	}, zap.NewNop())
	require.NoError(t, err)
	s.backoffUnit = time.Millisecond
	s.receiptPoll = time.Millisecond
	return s
}

func retries(n int) BuyConfigPatch {
	return BuyConfigPatch{MaxRetries: &n}
}

var token = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestSubmitPurchaseSuccess(t *testing.T) {
	backend := &fakeBackend{nonce: 5, gasPrice: gwei(5)}
	s := newTestSubmitter(t, backend, BuyConfigPatch{})

	res := s.SubmitPurchase(context.Background(), token, nil)
	require.True(t, res.Success, res.Detail)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, tx.Hash().Hex(), res.TxHash)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, uint64(5), tx.Nonce())
	assert.Equal(t, testContract, *tx.To())
	assert.Equal(t, 0, big.NewInt(1_000_000_000_000_000).Cmp(tx.Value()))
	assert.Equal(t, uint64(500000), tx.Gas())
	assert.Equal(t, 0, gwei(6).Cmp(tx.GasPrice()))
	assert.Equal(t, int64(chain.DefaultChainID), tx.ChainId().Int64())

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, s.Wallet(), from)
	// 默认 recipient 是自己的钱包
	assert.True(t, bytes.Contains(tx.Data(), common.LeftPadBytes(s.Wallet().Bytes(), 32)))
}

func TestSubmitPurchaseRecipientOverride(t *testing.T) {
	backend := &fakeBackend{gasPrice: gwei(1)}
	s := newTestSubmitter(t, backend, BuyConfigPatch{})
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	res := s.SubmitPurchase(context.Background(), token, &recipient)
	require.True(t, res.Success)
	assert.True(t, bytes.Contains(backend.sent[0].Data(), common.LeftPadBytes(recipient.Bytes(), 32)))
}

func TestSubmitPurchaseInsufficientFundsNoRetry(t *testing.T) {
	backend := &fakeBackend{
		gasPrice: gwei(1),
		sendErrs: []error{errors.New("insufficient funds for gas * price + value")},
	}
	s := newTestSubmitter(t, backend, retries(3))

	res := s.SubmitPurchase(context.Background(), token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, backend.sent, 1)
	assert.Equal(t, chain.KindInsufficientFunds.String(), res.ErrorKind)
	assert.Equal(t, "Insufficient funds. Check your BNB balance.", res.Detail)
	assert.NotEmpty(t, res.Hint)
}

func TestSubmitPurchaseCredentialErrorNoRetry(t *testing.T) {
	backend := &fakeBackend{gasPrice: gwei(1), sendErrs: []error{errors.New("invalid sender")}}
	s := newTestSubmitter(t, backend, retries(3))

	res := s.SubmitPurchase(context.Background(), token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, chain.KindCredential.String(), res.ErrorKind)
	assert.Equal(t, "Invalid private key configuration", res.Detail)
}

func TestSubmitPurchaseNonceErrorInvalidatesCache(t *testing.T) {
	backend := &fakeBackend{
		nonce:    9,
		gasPrice: gwei(1),
		sendErrs: []error{errors.New("nonce too low")},
	}
	s := newTestSubmitter(t, backend, retries(2))

	res := s.SubmitPurchase(context.Background(), token, nil)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, backend.sent, 2)
	// 第二次重新查链，拿到的仍是链上值而不是缓存自增值
	assert.Equal(t, 2, backend.nonceCalls)
	assert.Equal(t, uint64(9), backend.sent[1].Nonce())
}

func TestSubmitPurchaseTransientErrorsExhaustRetries(t *testing.T) {
	boom := errors.New("connection reset by peer")
	backend := &fakeBackend{gasPrice: gwei(1), sendErrs: []error{boom, boom, boom}}
	s := newTestSubmitter(t, backend, retries(3))

	res := s.SubmitPurchase(context.Background(), token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, backend.sent, 3)
	assert.Contains(t, res.Detail, "failed after 3 attempts")
	assert.Equal(t, chain.KindOther.String(), res.ErrorKind)

	// 缓存有效期内 nonce 连续递增
	assert.Equal(t, uint64(0), backend.sent[0].Nonce())
	assert.Equal(t, uint64(1), backend.sent[1].Nonce())
	assert.Equal(t, uint64(2), backend.sent[2].Nonce())
}

func TestSubmitPurchaseGasQueryFailureUsesFloor(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSubmitter(t, backend, BuyConfigPatch{})

	res := s.SubmitPurchase(context.Background(), token, nil)
	require.True(t, res.Success)
	assert.Equal(t, 0, gwei(3).Cmp(backend.sent[0].GasPrice()))
}

func TestSubmitPurchaseContextCancelledDuringBackoff(t *testing.T) {
	boom := errors.New("connection refused")
	backend := &fakeBackend{gasPrice: gwei(1), sendErrs: []error{boom, boom}}
	s := newTestSubmitter(t, backend, retries(2))
	s.backoffUnit = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.SubmitPurchase(ctx, token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Detail, "aborted")
}

func TestSubmitPurchaseWaitReceiptReverted(t *testing.T) {
	wait := true
	backend := &fakeBackend{
		gasPrice: gwei(1),
		receipt:  &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(1)},
	}
	patch := retries(2)
	patch.WaitReceipt = &wait
	s := newTestSubmitter(t, backend, patch)

	res := s.SubmitPurchase(context.Background(), token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, chain.KindReverted.String(), res.ErrorKind)
}

func TestSubmitPurchaseWaitReceiptTimeoutStops(t *testing.T) {
	wait := true
	timeout := 5 * time.Millisecond
	backend := &fakeBackend{gasPrice: gwei(1)}
	patch := retries(3)
	patch.WaitReceipt = &wait
	patch.ReceiptTimeout = &timeout
	s := newTestSubmitter(t, backend, patch)

	res := s.SubmitPurchase(context.Background(), token, nil)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, backend.sent[0].Hash().Hex(), res.TxHash)
}

func TestNewRejectsBadCredentials(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hex.EncodeToString(crypto.FromECDSA(key))
	wallet := crypto.PubkeyToAddress(key.PublicKey).Hex()
	other := common.HexToAddress("0x00000000000000000000000000000000000000cc").Hex()

	tests := []struct {
		name   string
		key    string
		wallet string
		want   error
	}{
		{"missing key", "", wallet, ErrMissingPrivateKey},
		{"prefixed key", "0x" + hexKey, wallet, ErrPrivateKeyPrefix},
		{"missing wallet", hexKey, "", ErrMissingWallet},
		{"wallet without prefix", hexKey, wallet[2:], ErrInvalidWallet},
		{"short wallet", hexKey, wallet[:20], ErrInvalidWallet},
		{"mismatched wallet", hexKey, other, ErrWalletMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{Client: &fakeBackend{}, PrivateKey: tt.key, Wallet: tt.wallet, Contract: testContract}, zap.NewNop())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateConfig(t *testing.T) {
	s := newTestSubmitter(t, &fakeBackend{}, BuyConfigPatch{})

	amount := "0.05"
	require.NoError(t, s.UpdateConfig(BuyConfigPatch{AmountBNB: &amount}))

	cfg := s.GetConfig()
	assert.Equal(t, "0.05", cfg.AmountBNB)
	assert.Equal(t, "3", cfg.GasPriceGwei)
	assert.Equal(t, 2, cfg.MaxRetries)

	// 返回值是副本
	cfg.AmountBNB = "100"
	assert.Equal(t, "0.05", s.GetConfig().AmountBNB)

	zero := 0
	assert.Error(t, s.UpdateConfig(BuyConfigPatch{MaxRetries: &zero}))
	assert.Equal(t, 2, s.GetConfig().MaxRetries)
}
