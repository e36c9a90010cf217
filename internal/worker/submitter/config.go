package submitter

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"web3-sniper/internal/worker/config"
	"web3-sniper/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrMissingPrivateKey = errors.New("missing private key: set WALLET_PRIVATE_KEY (without 0x prefix)")
	ErrPrivateKeyPrefix  = errors.New("private key should not include '0x' prefix")
	ErrMissingWallet     = errors.New("missing wallet address: set WALLET_ADDRESS")
	ErrInvalidWallet     = errors.New("wallet address must be a 0x-prefixed 42 character address")
	ErrWalletMismatch    = errors.New("wallet address does not match private key")
)

// BuyConfig 买入参数
type BuyConfig struct {
	AmountBNB          string // ether 单位
	MinTokensOut       string // 最小单位整数
	GasLimit           uint64
	GasPriceGwei       string // 开启加价时作为下限
	MaxRetries         int    // 总尝试次数
	UseHighPriorityGas bool
	WaitReceipt        bool
	ReceiptTimeout     time.Duration
}

func DefaultBuyConfig() BuyConfig {
	return BuyConfig{
		AmountBNB:          "0.001",
		MinTokensOut:       "0",
		GasLimit:           500000,
		GasPriceGwei:       "3",
		MaxRetries:         2,
		UseHighPriorityGas: true,
		WaitReceipt:        false,
		ReceiptTimeout:     30 * time.Second,
	}
}

// BuyConfigPatch nil 字段表示不修改
type BuyConfigPatch struct {
	AmountBNB          *string
	MinTokensOut       *string
	GasLimit           *uint64
	GasPriceGwei       *string
	MaxRetries         *int
	UseHighPriorityGas *bool
	WaitReceipt        *bool
	ReceiptTimeout     *time.Duration
}

// PatchFromConfig 配置文件中的买入参数全部作为覆盖项
func PatchFromConfig(c config.BuyConfig) BuyConfigPatch {
	timeout := time.Duration(c.ReceiptTimeout) * time.Second
	patch := BuyConfigPatch{
		GasLimit:           &c.GasLimit,
		MaxRetries:         &c.MaxRetries,
		UseHighPriorityGas: &c.UseHighPriorityGas,
		WaitReceipt:        &c.WaitReceipt,
		ReceiptTimeout:     &timeout,
	}
	if c.AmountBNB != "" {
		patch.AmountBNB = &c.AmountBNB
	}
	if c.MinTokensOut != "" {
		patch.MinTokensOut = &c.MinTokensOut
	}
	if c.GasPriceGwei != "" {
		patch.GasPriceGwei = &c.GasPriceGwei
	}
	return patch
}

// Apply 返回合并后的新配置，原值不变
func (c BuyConfig) Apply(p BuyConfigPatch) BuyConfig {
	if p.AmountBNB != nil {
		c.AmountBNB = *p.AmountBNB
	}
	if p.MinTokensOut != nil {
		c.MinTokensOut = *p.MinTokensOut
	}
	if p.GasLimit != nil {
		c.GasLimit = *p.GasLimit
	}
	if p.GasPriceGwei != nil {
		c.GasPriceGwei = *p.GasPriceGwei
	}
	if p.MaxRetries != nil {
		c.MaxRetries = *p.MaxRetries
	}
	if p.UseHighPriorityGas != nil {
		c.UseHighPriorityGas = *p.UseHighPriorityGas
	}
	if p.WaitReceipt != nil {
		c.WaitReceipt = *p.WaitReceipt
	}
	if p.ReceiptTimeout != nil {
		c.ReceiptTimeout = *p.ReceiptTimeout
	}
	return c
}

func (c BuyConfig) Validate() error {
	if _, err := utils.ToWei(c.AmountBNB); err != nil {
		return fmt.Errorf("buy amount: %w", err)
	}
	if _, err := utils.GweiToWei(c.GasPriceGwei); err != nil {
		return fmt.Errorf("buy gas price: %w", err)
	}
	if _, err := parseMinOut(c.MinTokensOut); err != nil {
		return err
	}
	if c.GasLimit == 0 {
		return errors.New("buy gas limit must be positive")
	}
	if c.MaxRetries < 1 {
		return errors.New("buy max retries must be at least 1")
	}
	if c.WaitReceipt && c.ReceiptTimeout <= 0 {
		return errors.New("buy receipt timeout must be positive")
	}
	return nil
}

func parseMinOut(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid min tokens out %q", s)
	}
	return v, nil
}

// ValidateCredentials 私钥不能带 0x；钱包地址必须是 0x 开头的 42 位地址
func ValidateCredentials(privateKey, wallet string) error {
	privateKey = strings.TrimSpace(privateKey)
	wallet = strings.TrimSpace(wallet)

	if privateKey == "" {
		return ErrMissingPrivateKey
	}
	if strings.HasPrefix(privateKey, "0x") || strings.HasPrefix(privateKey, "0X") {
		return ErrPrivateKeyPrefix
	}
	if wallet == "" {
		return ErrMissingWallet
	}
	if !strings.HasPrefix(wallet, "0x") || len(wallet) != 42 || !common.IsHexAddress(wallet) {
		return ErrInvalidWallet
	}
	return nil
}
