package ingestor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"web3-sniper/internal/worker/cache"
	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/monitor"
	"web3-sniper/internal/worker/notify"
	"web3-sniper/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

var ErrSubscriptionClosed = errors.New("log subscription closed")

// LogSource 日志订阅
type LogSource interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Purchaser 买入执行者
type Purchaser interface {
	SubmitPurchase(ctx context.Context, token common.Address, recipient *common.Address) model.PurchaseResult
}

// Store 主记录存储，同步写
type Store interface {
	Append(ctx context.Context, ev model.TokenCreateEvent) error
}

// Mirror 异步镜像写入，不能阻塞
type Mirror interface {
	Submit(ev model.TokenCreateEvent)
}

type Options struct {
	Client     LogSource
	Query      ethereum.FilterQuery
	Decoder    *Decoder
	Dedup      *cache.DedupWindow
	Whitelist  *cache.Whitelist
	Perf       *monitor.PerformanceMonitor
	Store      Store
	Mirrors    []Mirror
	Alerter    notify.Alerter
	Buyer      Purchaser // nil 表示只监控
	Guard      *cache.PurchaseGuard
	PruneEvery int // 每插入多少条检查一次去重窗口
}

// Ingestor 顺序处理订阅日志，命中白名单后落盘、告警并异步买入
type Ingestor struct {
	tl         *zap.Logger
	client     LogSource
	query      ethereum.FilterQuery
	decoder    *Decoder
	dedup      *cache.DedupWindow
	whitelist  *cache.Whitelist
	perf       *monitor.PerformanceMonitor
	store      Store
	mirrors    []Mirror
	alerter    notify.Alerter
	buyer      Purchaser
	guard      *cache.PurchaseGuard
	pruneEvery uint64

	inserted  atomic.Uint64
	purchases conc.WaitGroup
}

func New(opts Options, tl *zap.Logger) *Ingestor {
	pruneEvery := opts.PruneEvery
	if pruneEvery <= 0 {
		pruneEvery = 1
	}
	return &Ingestor{
		tl:         tl,
		client:     opts.Client,
		query:      opts.Query,
		decoder:    opts.Decoder,
		dedup:      opts.Dedup,
		whitelist:  opts.Whitelist,
		perf:       opts.Perf,
		store:      opts.Store,
		mirrors:    opts.Mirrors,
		alerter:    opts.Alerter,
		buyer:      opts.Buyer,
		guard:      opts.Guard,
		pruneEvery: uint64(pruneEvery),
	}
}

// Run 订阅一次并阻塞处理；订阅出错时返回错误，不自动重连
func (i *Ingestor) Run(ctx context.Context) error {
	logs := make(chan types.Log, 256)
	sub, err := i.client.SubscribeFilterLogs(ctx, i.query, logs)
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}
	defer sub.Unsubscribe()

	i.tl.Info("✅ Listening for TokenCreate events",
		zap.Any("contracts", i.query.Addresses),
		zap.Int("whitelist", i.whitelist.Len()),
		zap.Bool("auto_buy", i.buyer != nil),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				err = ErrSubscriptionClosed
			}
			i.tl.Error("❌ Subscription error", zap.Error(err))
			i.drain(ctx, logs)
			return err
		case lg := <-logs:
			i.HandleLog(ctx, lg)
		}
	}
}

// drain 订阅断开后处理缓冲区里已收到的日志
func (i *Ingestor) drain(ctx context.Context, logs <-chan types.Log) {
	for n := 0; ; n++ {
		select {
		case lg := <-logs:
			i.HandleLog(ctx, lg)
		default:
			if n > 0 {
				i.tl.Info("Processed buffered logs after subscription error", zap.Int("count", n))
			}
			return
		}
	}
}

// HandleLog 处理单条日志，任何错误都不会向上抛出
func (i *Ingestor) HandleLog(ctx context.Context, lg types.Log) {
	receivedAt := time.Now()
	defer func() {
		if r := recover(); r != nil {
			i.tl.Error("❌ Panic while handling log", zap.Any("panic", r), zap.String("tx", lg.TxHash.Hex()))
		}
	}()

	monitor.EventsReceived.Inc()
	if lg.Removed {
		// 重组移除的日志
		i.tl.Debug("Skip removed log", zap.String("tx", lg.TxHash.Hex()))
		return
	}

	if i.dedup.SeenOrAdd(lg.TxHash.Hex()) {
		monitor.EventsDuplicate.Inc()
		return
	}

	ev, err := i.decoder.Decode(lg, receivedAt.UTC())
	if err != nil {
		monitor.EventDecodeErrors.Inc()
		i.tl.Error("❌ Error decoding log", zap.String("tx", lg.TxHash.Hex()), zap.Uint64("block", lg.BlockNumber), zap.Error(err))
		return
	}

	matched := i.whitelist.Contains(ev.Creator)
	monitor.WhitelistMatches.WithLabelValues(strconv.FormatBool(matched)).Inc()

	i.perf.RecordToken()
	if i.inserted.Add(1)%i.pruneEvery == 0 {
		if evicted := i.dedup.PruneIfOversized(); evicted > 0 {
			i.tl.Info("🧹 Pruned processed transactions", zap.Int("evicted", evicted), zap.Int("size", i.dedup.Len()))
		}
	}

	if matched {
		i.handleMatch(ctx, ev, receivedAt)
	} else {
		i.tl.Info("📝 Token",
			zap.String("symbol", ev.Symbol),
			zap.String("name", ev.Name),
			zap.String("creator", utils.ShortAddress(ev.Creator)),
		)
	}

	if i.perf.ShouldReport() {
		i.perf.Report()
	}
}

func (i *Ingestor) handleMatch(ctx context.Context, ev model.TokenCreateEvent, receivedAt time.Time) {
	// 买入优先，落盘和告警在后
	i.spawnPurchase(ctx, ev, receivedAt)

	if err := i.store.Append(ctx, ev); err != nil {
		i.tl.Error("❌ Error saving whitelisted token", zap.String("token", ev.TokenAddress), zap.Error(err))
	} else {
		i.tl.Info("💾 Whitelisted token saved", zap.String("token", ev.TokenAddress))
	}
	for _, m := range i.mirrors {
		m.Submit(ev)
	}
	i.alerter.TokenAlert(ctx, ev)
}

func (i *Ingestor) spawnPurchase(ctx context.Context, ev model.TokenCreateEvent, receivedAt time.Time) {
	if i.buyer == nil {
		return
	}
	if i.guard != nil && !i.guard.TryAcquire(ev.TokenAddress) {
		i.tl.Warn("Purchase already in flight, skip", zap.String("token", ev.TokenAddress))
		return
	}

	i.tl.Info("🤖 AUTO-BUY TRIGGERED", zap.String("token", ev.TokenAddress), zap.String("symbol", ev.Symbol))
	token := common.HexToAddress(ev.TokenAddress)
	i.purchases.Go(func() {
		res := i.buyer.SubmitPurchase(ctx, token, nil)
		if !res.Success && i.guard != nil {
			i.guard.Release(ev.TokenAddress)
		}
		i.alerter.PurchaseResult(ctx, ev, res)
	})
	monitor.DetectToSpawnLatency.Observe(time.Since(receivedAt).Seconds())
}

// Wait 等待所有买入任务结束
func (i *Ingestor) Wait() {
	if r := i.purchases.WaitAndRecover(); r != nil {
		i.tl.Error("❌ Purchase task panicked", zap.String("panic", r.String()))
	}
}
