package dao

import (
	"context"
	"fmt"

	"web3-sniper/internal/worker/config"
	"web3-sniper/internal/worker/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SourceFile  = "file"
	SourceDB    = "db"
	SourceRedis = "redis"
)

// WhitelistSource 白名单来源，启动时读取一次
type WhitelistSource interface {
	Load(ctx context.Context) ([]model.WhitelistEntry, error)
}

// NewWhitelistSource 按配置选择来源，db/redis 未配置时返回错误
func NewWhitelistSource(cfg config.WhitelistConfig, db *gorm.DB, rds *redis.Client, tl *zap.Logger) (WhitelistSource, error) {
	switch cfg.Source {
	case "", SourceFile:
		return NewFileWhitelistSource(cfg.File, tl), nil
	case SourceDB:
		if db == nil {
			return nil, fmt.Errorf("whitelist source %q requires database.dsn", cfg.Source)
		}
		return NewDbWhitelistSource(db, cfg.Table), nil
	case SourceRedis:
		if rds == nil {
			return nil, fmt.Errorf("whitelist source %q requires redis.address", cfg.Source)
		}
		return NewRedisWhitelistSource(rds, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown whitelist source %q", cfg.Source)
	}
}
