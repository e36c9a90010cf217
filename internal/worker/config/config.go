package config

import (
	"errors"
	"fmt"
	"strings"

	"web3-sniper/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config 定义整个配置的结构
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Chain         ChainConfig         `mapstructure:"chain"`
	Wallet        WalletConfig        `mapstructure:"wallet"`
	Buy           BuyConfig           `mapstructure:"buy"`
	Sniper        SniperConfig        `mapstructure:"sniper"`
	Whitelist     WhitelistConfig     `mapstructure:"whitelist"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Lark          LarkConfig          `mapstructure:"lark"`
	Monitor       MonitorConfig       `mapstructure:"monitor"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ChainConfig 链与合约配置
type ChainConfig struct {
	WsURL       string `mapstructure:"ws_url"`  // 订阅日志
	RpcURL      string `mapstructure:"rpc_url"` // 发送交易
	ChainID     int64  `mapstructure:"chain_id"`
	Contract    string `mapstructure:"contract"`
	EventTopic  string `mapstructure:"event_topic"`
	DialTimeout int    `mapstructure:"dial_timeout"` // 秒
}

// WalletConfig 私钥不带 0x 前缀，地址带 0x 前缀
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	Address    string `mapstructure:"address"`
}

// BuyConfig 买入参数
type BuyConfig struct {
	AmountBNB          string `mapstructure:"amount_bnb"`
	MinTokensOut       string `mapstructure:"min_tokens_out"`
	GasLimit           uint64 `mapstructure:"gas_limit"`
	GasPriceGwei       string `mapstructure:"gas_price_gwei"`
	MaxRetries         int    `mapstructure:"max_retries"`
	UseHighPriorityGas bool   `mapstructure:"use_high_priority_gas"`
	WaitReceipt        bool   `mapstructure:"wait_receipt"`
	ReceiptTimeout     int    `mapstructure:"receipt_timeout"` // 秒
}

type SniperConfig struct {
	AutoBuyEnabled       bool   `mapstructure:"auto_buy_enabled"`
	MaxProcessedTxs      int    `mapstructure:"max_processed_txs"`
	PruneEvery           int    `mapstructure:"prune_every"`
	ReportInterval       int    `mapstructure:"report_interval"` // 秒
	TokensFile           string `mapstructure:"tokens_file"`
	PurchaseGuardTTL     int    `mapstructure:"purchase_guard_ttl"`     // 秒
	BalanceCheckInterval int    `mapstructure:"balance_check_interval"` // 秒，0 关闭
}

// WhitelistConfig 白名单来源: file / db / redis
type WhitelistConfig struct {
	Source   string `mapstructure:"source"`
	File     string `mapstructure:"file"`
	Table    string `mapstructure:"table"`
	RedisKey string `mapstructure:"redis_key"`
}

// KafkaConfig Kafka 配置, brokers 为空不启用
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	TopicToken string `mapstructure:"topic_token"`
}

// RedisConfig Redis 配置, address 为空不启用
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MaxItems int64  `mapstructure:"max_items"`
}

// DatabaseConfig postgres / mysql, dsn 为空不启用
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ElasticsearchConfig struct {
	Addresses      []string `mapstructure:"addresses"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	TokenIndexName string   `mapstructure:"token_index_name"`
}

// LarkConfig Lark 配置
type LarkConfig struct {
	Webhook   string `mapstructure:"webhook"`
	RateLimit int    `mapstructure:"rate_limit"` // 每分钟
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

var (
	ErrMissingWsURL    = errors.New("chain.ws_url is required")
	ErrMissingRpcURL   = errors.New("chain.rpc_url is required")
	ErrInvalidContract = errors.New("chain.contract must be a valid address")
	ErrInvalidTopic    = errors.New("chain.event_topic must be a 32 byte hex hash")
	ErrInvalidWindow   = errors.New("sniper.max_processed_txs must be positive")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")

	v.SetDefault("chain.ws_url", "wss://bsc.publicnode.com")
	v.SetDefault("chain.rpc_url", "https://bsc-dataseed1.binance.org/")
	v.SetDefault("chain.chain_id", 56)
	v.SetDefault("chain.contract", "0x5c952063c7fc8610FFDB798152D69F0B9550762b")
	v.SetDefault("chain.event_topic", "0x396d5e902b675b032348d3d2e9517ee8f0c4a926603fbc075d3d282ff00cad20")
	v.SetDefault("chain.dial_timeout", 10)

	v.SetDefault("wallet.private_key", "")
	v.SetDefault("wallet.address", "")

	v.SetDefault("buy.amount_bnb", "0.001")
	v.SetDefault("buy.min_tokens_out", "0")
	v.SetDefault("buy.gas_limit", 500000)
	v.SetDefault("buy.gas_price_gwei", "3")
	v.SetDefault("buy.max_retries", 2)
	v.SetDefault("buy.use_high_priority_gas", true)
	v.SetDefault("buy.wait_receipt", false)
	v.SetDefault("buy.receipt_timeout", 30)

	v.SetDefault("sniper.auto_buy_enabled", false)
	v.SetDefault("sniper.max_processed_txs", 10000)
	v.SetDefault("sniper.prune_every", 1)
	v.SetDefault("sniper.report_interval", 60)
	v.SetDefault("sniper.tokens_file", "list/whitelisted_tokens.json")
	v.SetDefault("sniper.purchase_guard_ttl", 600)
	v.SetDefault("sniper.balance_check_interval", 60)

	v.SetDefault("whitelist.source", "file")
	v.SetDefault("whitelist.file", "list/whitelist.json")
	v.SetDefault("whitelist.table", "t_sniper_whitelist")
	v.SetDefault("whitelist.redis_key", "sniper:whitelist")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic_token", "sniper_token_create")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_items", 10000)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("elasticsearch.addresses", []string{})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.token_index_name", "sniper_tokens")
	v.SetDefault("lark.webhook", "")
	v.SetDefault("lark.rate_limit", 60)
	v.SetDefault("monitor.enable", false)
	v.SetDefault("monitor.prometheus_addr", ":9090")
}

// newViper 配置文件可选, 环境变量优先: WALLET_PRIVATE_KEY / SNIPER_AUTO_BUY_ENABLED ...
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config.worker")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config/")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

var global = newViper()

// Load 读取 .env + 配置文件 + 环境变量
func Load() (Config, error) {
	// .env 不存在不报错
	_ = godotenv.Load()
	return load(global)
}

func load(v *viper.Viper) (Config, error) {
	var config Config

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config file: %w", err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return config, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// InitConfig 启动时加载, 失败直接 panic
func InitConfig() Config {
	config, err := Load()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return config
}

// Validate 只检查链相关配置；钱包/私钥由 submitter 构造时校验
func (c Config) Validate() error {
	if strings.TrimSpace(c.Chain.WsURL) == "" {
		return ErrMissingWsURL
	}
	if strings.TrimSpace(c.Chain.RpcURL) == "" {
		return ErrMissingRpcURL
	}
	if !strings.HasPrefix(c.Chain.Contract, "0x") || !common.IsHexAddress(c.Chain.Contract) {
		return ErrInvalidContract
	}
	if !isTopic(c.Chain.EventTopic) {
		return ErrInvalidTopic
	}
	if c.Sniper.MaxProcessedTxs <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

func isTopic(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}

// WatchConfig 配置文件变更时重新加载并回调，加载失败保留旧配置
func WatchConfig(tl *zap.Logger, onChange func(Config)) {
	global.OnConfigChange(func(e fsnotify.Event) {
		reload(global, tl, e.Name, onChange)
	})
	global.WatchConfig()
}

func reload(v *viper.Viper, tl *zap.Logger, file string, onChange func(Config)) {
	newConfig, err := load(v)
	if err != nil {
		tl.Warn("⚠️ Config reload failed, keep previous config", zap.String("file", file), zap.Error(err))
		return
	}
	logger.SetLogLevel(newConfig.Log.Level)
	tl.Info("Config reloaded", zap.String("file", file))
	if onChange != nil {
		onChange(newConfig)
	}
}
