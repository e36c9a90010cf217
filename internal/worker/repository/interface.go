package repository

import (
	"web3-sniper/pkg/elasticsearch"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

// Repository 外部连接集合；除两个链客户端外都是可选的，未配置时返回 nil
type Repository interface {
	GetRDB() RedisClient
	GetDB() DBClient
	GetMQ() MQClient
	GetES() *elasticsearch.Client
	GetWsClient() *ethclient.Client  // 订阅日志
	GetRpcClient() *ethclient.Client // 发送交易
	Close() error
}
