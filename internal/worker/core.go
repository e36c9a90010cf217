package worker

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"web3-sniper/internal/worker/cache"
	"web3-sniper/internal/worker/chain"
	"web3-sniper/internal/worker/config"
	"web3-sniper/internal/worker/dao"
	"web3-sniper/internal/worker/ingestor"
	"web3-sniper/internal/worker/job"
	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/monitor"
	"web3-sniper/internal/worker/notify"
	"web3-sniper/internal/worker/repository"
	"web3-sniper/internal/worker/submitter"
	"web3-sniper/internal/worker/writer"
	"web3-sniper/internal/worker/writer/token"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type tokenWriter = writer.AsyncBatchWriter[model.TokenCreateEvent]

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	repo      repository.Repository
	scheduler *job.Scheduler
	ingestor  *ingestor.Ingestor
	submitter *submitter.Submitter // nil 表示只监控
	mirrors   []*tokenWriter
	lark      *notify.LarkAlerter
	metrics   *monitor.MetricsServer
}

// New 组装所有组件；开启自动买入时私钥或钱包无效直接返回错误
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Core, error) {
	repo, err := repository.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &Core{
		cfg:       cfg,
		tl:        logger,
		repo:      repo,
		scheduler: job.NewScheduler(logger),
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger),
	}
	if err := c.build(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return c, nil
}

func (c *Core) build(ctx context.Context) error {
	cfg := c.cfg

	// 白名单
	source, err := dao.NewWhitelistSource(cfg.Whitelist, c.repo.GetDB(), c.repo.GetRDB(), c.tl)
	if err != nil {
		return err
	}
	entries, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load whitelist: %w", err)
	}
	whitelist := cache.NewWhitelist()
	whitelist.Initialize(entries)
	c.tl.Info("📋 Whitelist loaded",
		zap.String("source", cfg.Whitelist.Source),
		zap.Int("count", whitelist.Len()),
		zap.Strings("creators", whitelist.Entries()),
	)
	if whitelist.Len() == 0 {
		c.tl.Warn("⚠️ Whitelist is empty, no token will match")
	}

	dedup := cache.NewDedupWindow(cfg.Sniper.MaxProcessedTxs)
	perf := monitor.NewPerformanceMonitor(time.Duration(cfg.Sniper.ReportInterval)*time.Second, dedup.Len, c.tl)

	// 记录存储
	store := token.NewFileStore(cfg.Sniper.TokensFile, c.tl)
	c.scheduler.RegisterOnceJob("token_store_init", job.NewTokenStoreInit(store, c.tl).Run)
	mirrors := c.buildMirrors()

	// 通知
	alerters := notify.Multi{notify.NewLogAlerter(c.tl)}
	if cfg.Lark.Webhook != "" {
		c.lark = notify.NewLarkAlerter(cfg.Lark, c.tl)
		alerters = append(alerters, c.lark)
	}

	// 买入
	var buyer ingestor.Purchaser
	var guard *cache.PurchaseGuard
	if cfg.Sniper.AutoBuyEnabled {
		c.submitter, err = submitter.New(submitter.Options{
			Client:     c.repo.GetRpcClient(),
			PrivateKey: cfg.Wallet.PrivateKey,
			Wallet:     cfg.Wallet.Address,
			Contract:   common.HexToAddress(cfg.Chain.Contract),
			ChainID:    big.NewInt(cfg.Chain.ChainID),
			Overrides:  submitter.PatchFromConfig(cfg.Buy),
		}, c.tl)
		if err != nil {
			return fmt.Errorf("init purchase submitter: %w", err)
		}
		buyer = c.submitter
		guard = cache.NewPurchaseGuard(time.Duration(cfg.Sniper.PurchaseGuardTTL) * time.Second)
		c.tl.Info("🤖 Auto-buy enabled", zap.String("wallet", c.submitter.Wallet().Hex()), zap.String("amount_bnb", c.submitter.GetConfig().AmountBNB))

		if cfg.Sniper.BalanceCheckInterval > 0 {
			balance := job.NewWalletBalance(c.repo.GetRpcClient(), c.submitter.Wallet(), c.submitter, c.tl)
			c.scheduler.RegisterJob("wallet_balance", time.Duration(cfg.Sniper.BalanceCheckInterval)*time.Second, balance.Run)
		}
	} else {
		c.tl.Info("👀 Auto-buy disabled, monitoring only")
	}

	topic := common.HexToHash(cfg.Chain.EventTopic)
	c.ingestor = ingestor.New(ingestor.Options{
		Client:     c.repo.GetWsClient(),
		Query:      chain.FilterQuery(common.HexToAddress(cfg.Chain.Contract), topic),
		Decoder:    ingestor.NewDecoder(topic),
		Dedup:      dedup,
		Whitelist:  whitelist,
		Perf:       perf,
		Store:      store,
		Mirrors:    mirrors,
		Alerter:    alerters,
		Buyer:      buyer,
		Guard:      guard,
		PruneEvery: cfg.Sniper.PruneEvery,
	}, c.tl)
	return nil
}

// buildMirrors 已配置的存储各挂一个异步写入
func (c *Core) buildMirrors() []ingestor.Mirror {
	var mirrors []ingestor.Mirror
	add := func(w writer.BatchWriter[model.TokenCreateEvent], id string) {
		aw := writer.NewAsyncBatchWriter(c.tl, w, 100, time.Second, id, 1)
		c.mirrors = append(c.mirrors, aw)
		mirrors = append(mirrors, aw)
	}

	if rdb := c.repo.GetRDB(); rdb != nil {
		add(token.NewRedisTokenWriter(rdb, c.tl, c.cfg.Chain.ChainID, c.cfg.Redis.MaxItems), "token_redis")
	}
	if mq := c.repo.GetMQ(); mq != nil {
		add(token.NewKafkaTokenWriter(mq, c.tl, c.cfg.Kafka.TopicToken), "token_kafka")
	}
	if db := c.repo.GetDB(); db != nil {
		add(token.NewDbTokenWriter(db, c.tl), "token_db")
	}
	if es := c.repo.GetES(); es != nil {
		add(token.NewESTokenWriter(es, c.tl, c.cfg.Elasticsearch.TokenIndexName), "token_es")
	}
	return mirrors
}

// OnConfigChange 热更新买入参数，其余配置需要重启
func (c *Core) OnConfigChange(cfg config.Config) {
	if c.submitter == nil {
		return
	}
	if err := c.submitter.UpdateConfig(submitter.PatchFromConfig(cfg.Buy)); err != nil {
		c.tl.Warn("Ignore invalid buy configuration", zap.Error(err))
	}
}

// Start 阻塞直到 ctx 取消或订阅出错
func (c *Core) Start(ctx context.Context) error {
	c.tl.Info("Starting sniper core...")
	c.metrics.Run()

	for _, m := range c.mirrors {
		m.Start(ctx)
	}
	c.scheduler.Start(ctx)

	c.tl.Info("Sniper started successfully")
	return c.ingestor.Run(ctx)
}

// Stop 等待进行中的买入，刷完异步写入后关闭连接
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping sniper core...")

	c.scheduler.Stop(ctx)
	c.ingestor.Wait()

	for _, m := range c.mirrors {
		m.Close()
	}
	if c.lark != nil {
		_ = c.lark.Close()
	}
	if err := c.metrics.Stop(ctx); err != nil {
		c.tl.Warn("Metrics server stop failed", zap.Error(err))
	}

	c.repo.Close()
	c.tl.Info("Sniper core stopped.")
}
