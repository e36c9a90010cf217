package token

import (
	"context"
	"time"

	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/writer"
	"web3-sniper/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	RETRY_COUNT = 3
)

// RedisTokenWriter ZSET 按时间打分，ZREVRANGE 即为最新在前
type RedisTokenWriter struct {
	redis    *redis.Client
	tl       *zap.Logger
	key      string
	maxItems int64
}

func NewRedisTokenWriter(rdb *redis.Client, tl *zap.Logger, chainID int64, maxItems int64) writer.BatchWriter[model.TokenCreateEvent] {
	return &RedisTokenWriter{redis: rdb, tl: tl, key: utils.TokenListKey(chainID), maxItems: maxItems}
}

func (w *RedisTokenWriter) BWrite(ctx context.Context, events []model.TokenCreateEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := w.redis.Pipeline()
	for _, ev := range events {
		member, err := sonic.MarshalString(ev)
		if err != nil {
			w.tl.Warn("Marshal token event failed", zap.String("token", ev.TokenAddress), zap.Error(err))
			continue
		}
		pipe.ZAdd(ctx, w.key, redis.Z{Score: float64(ev.Timestamp.UnixMilli()), Member: member})
	}
	if w.maxItems > 0 {
		// 只保留最新 maxItems 条
		pipe.ZRemRangeByRank(ctx, w.key, 0, -w.maxItems-1)
	}

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		_, err = pipe.Exec(ctx)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		w.tl.Warn("❌ Redis pipeline exec failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *RedisTokenWriter) Close() error {
	return nil
}
