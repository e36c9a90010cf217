package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"web3-sniper/internal/worker"
	"web3-sniper/internal/worker/config"
	"web3-sniper/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	logger.InitTrace("web3-sniper", "worker")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	rootLogger := logger.NewLoggerWithOptions("worker", logger.Options{
		Dir:        cfg.Log.Dir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)
	defer tl.Sync()

	tl.Info("🎯 Starting four.meme sniper...",
		zap.String("contract", cfg.Chain.Contract),
		zap.Bool("auto_buy", cfg.Sniper.AutoBuyEnabled),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := worker.New(ctx, cfg, tl)
	if err != nil {
		tl.Error("❌ Failed to initialize sniper", zap.Error(err))
		os.Exit(1)
	}

	// 启动配置热加载监听
	config.WatchConfig(tl, core.OnConfigChange)

	runErr := core.Start(ctx)
	if runErr != nil {
		tl.Error("❌ Sniper stopped with error", zap.Error(runErr))
	} else {
		tl.Info("Received shutdown signal, starting graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	core.Stop(shutdownCtx)

	if runErr != nil {
		tl.Sync()
		os.Exit(1)
	}
}
