package dao

import (
	"context"
	"errors"
	"os"

	"web3-sniper/internal/worker/model"
	"web3-sniper/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fileWhitelistSource JSON 数组 [{"creator":"0x..."}]
type fileWhitelistSource struct {
	path string
	tl   *zap.Logger
}

func NewFileWhitelistSource(path string, tl *zap.Logger) WhitelistSource {
	return &fileWhitelistSource{path: path, tl: tl}
}

// Load 文件不存在或格式错误时返回空列表，只记录日志
func (s *fileWhitelistSource) Load(ctx context.Context) ([]model.WhitelistEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.tl.Warn("Whitelist file not found", zap.String("path", s.path))
		return []model.WhitelistEntry{}, nil
	}
	if err != nil {
		s.tl.Error("❌ Error loading whitelist file", zap.String("path", s.path), zap.Error(err))
		return []model.WhitelistEntry{}, nil
	}

	var entries []model.WhitelistEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		s.tl.Error("❌ Error parsing whitelist file", zap.String("path", s.path), zap.Error(err))
		return []model.WhitelistEntry{}, nil
	}
	return entries, nil
}

type dbWhitelistSource struct {
	db    *gorm.DB
	table string
}

func NewDbWhitelistSource(db *gorm.DB, table string) WhitelistSource {
	return &dbWhitelistSource{db: db, table: table}
}

func (s *dbWhitelistSource) Load(ctx context.Context) ([]model.WhitelistEntry, error) {
	var entries []model.WhitelistEntry
	err := s.db.WithContext(ctx).Table(s.table).Select("creator").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type redisWhitelistSource struct {
	rds *redis.Client
	key string
}

func NewRedisWhitelistSource(rds *redis.Client, key string) WhitelistSource {
	if key == "" {
		key = utils.WhitelistKey()
	}
	return &redisWhitelistSource{rds: rds, key: key}
}

func (s *redisWhitelistSource) Load(ctx context.Context) ([]model.WhitelistEntry, error) {
	members, err := s.rds.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]model.WhitelistEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, model.WhitelistEntry{Creator: m})
	}
	return entries, nil
}
