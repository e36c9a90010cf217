package submitter

import (
	"testing"
	"time"

	"web3-sniper/internal/worker/config"

	"github.com/stretchr/testify/assert"
)

func TestPatchFromConfig(t *testing.T) {
	cfg := DefaultBuyConfig().Apply(PatchFromConfig(config.BuyConfig{
		AmountBNB:          "0.2",
		GasLimit:           300000,
		MaxRetries:         4,
		UseHighPriorityGas: false,
		ReceiptTimeout:     10,
	}))

	assert.Equal(t, "0.2", cfg.AmountBNB)
	assert.Equal(t, "0", cfg.MinTokensOut)
	assert.Equal(t, "3", cfg.GasPriceGwei)
	assert.Equal(t, uint64(300000), cfg.GasLimit)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.False(t, cfg.UseHighPriorityGas)
	assert.Equal(t, 10*time.Second, cfg.ReceiptTimeout)
}

func TestBuyConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultBuyConfig().Validate())

	bad := []func(*BuyConfig){
		func(c *BuyConfig) { c.AmountBNB = "abc" },
		func(c *BuyConfig) { c.AmountBNB = "-1" },
		func(c *BuyConfig) { c.GasPriceGwei = "" },
		func(c *BuyConfig) { c.MinTokensOut = "1.5" },
		func(c *BuyConfig) { c.GasLimit = 0 },
		func(c *BuyConfig) { c.MaxRetries = 0 },
		func(c *BuyConfig) { c.WaitReceipt = true; c.ReceiptTimeout = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultBuyConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}
}

func TestValidateCredentials(t *testing.T) {
	key := "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	wallet := "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

	assert.NoError(t, ValidateCredentials(key, wallet))
	assert.ErrorIs(t, ValidateCredentials(" ", wallet), ErrMissingPrivateKey)
	assert.ErrorIs(t, ValidateCredentials("0X"+key, wallet), ErrPrivateKeyPrefix)
	assert.ErrorIs(t, ValidateCredentials(key, "0x123"), ErrInvalidWallet)
}
