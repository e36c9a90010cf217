package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "config.worker.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config.worker")
		v.SetConfigType("yaml")
		v.AddConfigPath(t.TempDir())
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(testViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, int64(56), cfg.Chain.ChainID)
	assert.Equal(t, "wss://bsc.publicnode.com", cfg.Chain.WsURL)
	assert.Equal(t, "0.001", cfg.Buy.AmountBNB)
	assert.Equal(t, "0", cfg.Buy.MinTokensOut)
	assert.Equal(t, uint64(500000), cfg.Buy.GasLimit)
	assert.Equal(t, "3", cfg.Buy.GasPriceGwei)
	assert.Equal(t, 2, cfg.Buy.MaxRetries)
	assert.True(t, cfg.Buy.UseHighPriorityGas)
	assert.False(t, cfg.Sniper.AutoBuyEnabled)
	assert.Equal(t, 10000, cfg.Sniper.MaxProcessedTxs)
	assert.Equal(t, "file", cfg.Whitelist.Source)
}

func TestLoadFileOverrides(t *testing.T) {
	yaml := `
buy:
  amount_bnb: "0.05"
  gas_price_gwei: 5
  max_retries: 4
sniper:
  auto_buy_enabled: true
  max_processed_txs: 200
`
	cfg, err := load(testViper(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, "0.05", cfg.Buy.AmountBNB)
	// 数字被弱类型解码为字符串
	assert.Equal(t, "5", cfg.Buy.GasPriceGwei)
	assert.Equal(t, 4, cfg.Buy.MaxRetries)
	assert.True(t, cfg.Sniper.AutoBuyEnabled)
	assert.Equal(t, 200, cfg.Sniper.MaxProcessedTxs)
}

func TestLoadInvalidContract(t *testing.T) {
	yaml := `
chain:
  contract: "0x1234"
`
	_, err := load(testViper(t, yaml))
	assert.ErrorIs(t, err, ErrInvalidContract)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Chain: ChainConfig{
				WsURL:      "wss://bsc.publicnode.com",
				RpcURL:     "https://bsc-dataseed1.binance.org/",
				Contract:   "0x5c952063c7fc8610FFDB798152D69F0B9550762b",
				EventTopic: "0x396d5e902b675b032348d3d2e9517ee8f0c4a926603fbc075d3d282ff00cad20",
			},
			Sniper: SniperConfig{MaxProcessedTxs: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing ws", func(c *Config) { c.Chain.WsURL = " " }, ErrMissingWsURL},
		{"missing rpc", func(c *Config) { c.Chain.RpcURL = "" }, ErrMissingRpcURL},
		{"bad contract", func(c *Config) { c.Chain.Contract = "5c952063c7fc8610FFDB798152D69F0B9550762b" }, ErrInvalidContract},
		{"contract bad char", func(c *Config) { c.Chain.Contract = "0x5c952063c7fc8610FFDB798152D69F0B9550762z" }, ErrInvalidContract},
		{"bad topic", func(c *Config) { c.Chain.EventTopic = "0xzz" }, ErrInvalidTopic},
		{"short topic", func(c *Config) { c.Chain.EventTopic = "0x396d5e90" }, ErrInvalidTopic},
		{"topic without prefix", func(c *Config) {
			c.Chain.EventTopic = "396d5e902b675b032348d3d2e9517ee8f0c4a926603fbc075d3d282ff00cad20"
		}, ErrInvalidTopic},
		{"zero window", func(c *Config) { c.Sniper.MaxProcessedTxs = 0 }, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReloadKeepsPreviousConfigOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buy:\n  amount_bnb: \"0.01\"\n"), 0644))
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	core, logs := observer.New(zapcore.InfoLevel)
	tl := zap.New(core)
	var got []Config
	onChange := func(c Config) { got = append(got, c) }

	reload(v, tl, path, onChange)
	require.Len(t, got, 1)
	assert.Equal(t, "0.01", got[0].Buy.AmountBNB)

	require.NoError(t, os.WriteFile(path, []byte("chain:\n  contract: \"0x1234\"\n"), 0644))
	reload(v, tl, path, onChange)
	assert.Len(t, got, 1)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].ContextMap()["error"], ErrInvalidContract.Error())
}
