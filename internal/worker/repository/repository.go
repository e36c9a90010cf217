package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"web3-sniper/internal/worker/chain"
	"web3-sniper/internal/worker/config"
	"web3-sniper/pkg/database"
	"web3-sniper/pkg/elasticsearch"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type repositoryImpl struct {
	cfg       config.Config
	logger    *zap.Logger
	db        *gorm.DB
	rdb       *redis.Client
	mq        *kafka.Writer
	es        *elasticsearch.Client
	wsClient  *ethclient.Client
	rpcClient *ethclient.Client
}

// New 建立链连接，失败返回错误；存储类连接失败只告警并跳过
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (Repository, error) {
	r := &repositoryImpl{cfg: cfg, logger: logger}
	if err := r.initChain(ctx); err != nil {
		r.Close()
		return nil, err
	}
	r.initStorage(ctx)
	return r, nil
}

func (r *repositoryImpl) initChain(ctx context.Context) error {
	timeout := time.Duration(r.cfg.Chain.DialTimeout) * time.Second

	ws, head, err := chain.Dial(ctx, r.cfg.Chain.WsURL, timeout)
	if err != nil {
		return fmt.Errorf("connect websocket endpoint: %w", err)
	}
	r.wsClient = ws
	r.logger.Info("✅ Connected to BSC WebSocket", zap.Uint64("block", head))

	rpc, head, err := chain.Dial(ctx, r.cfg.Chain.RpcURL, timeout)
	if err != nil {
		return fmt.Errorf("connect rpc endpoint: %w", err)
	}
	r.rpcClient = rpc
	r.logger.Info("✅ Connected to BSC RPC", zap.Uint64("block", head))
	return nil
}

func (r *repositoryImpl) initStorage(ctx context.Context) {
	var err error

	if strings.TrimSpace(r.cfg.Database.DSN) != "" {
		r.db, err = database.Open(r.cfg.Database.Driver, r.cfg.Database.DSN)
		if err != nil {
			r.logger.Warn("failed to connect to database, continue without it", zap.Error(err))
			r.db = nil
		}
	} else {
		r.logger.Info("database dsn empty, skip database initialization")
	}

	if strings.TrimSpace(r.cfg.Redis.Address) != "" {
		r.rdb = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Redis.Address,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 10,
		})
		if err := r.rdb.Ping(ctx).Err(); err != nil {
			r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
		}
	}

	if strings.TrimSpace(r.cfg.Kafka.Brokers) != "" {
		brokers := strings.Split(r.cfg.Kafka.Brokers, ",")
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			MaxAttempts:  5,
			WriteTimeout: 2 * time.Second,
		}
	}

	if len(r.cfg.Elasticsearch.Addresses) > 0 {
		r.es, err = elasticsearch.NewClient(elasticsearch.Config{
			Addresses: r.cfg.Elasticsearch.Addresses,
			Username:  r.cfg.Elasticsearch.Username,
			Password:  r.cfg.Elasticsearch.Password,
		}, r.logger)
		if err != nil {
			r.logger.Warn("failed to create elasticsearch client, continue without it", zap.Error(err))
			r.es = nil
		}
	}
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) GetES() *elasticsearch.Client {
	return r.es
}

func (r *repositoryImpl) GetWsClient() *ethclient.Client {
	return r.wsClient
}

func (r *repositoryImpl) GetRpcClient() *ethclient.Client {
	return r.rpcClient
}

func (r *repositoryImpl) Close() error {
	database.Close(r.db)
	if r.rdb != nil {
		r.rdb.Close()
	}
	if r.mq != nil {
		r.mq.Close()
	}
	if r.wsClient != nil {
		r.wsClient.Close()
	}
	if r.rpcClient != nil {
		r.rpcClient.Close()
	}
	return nil
}
