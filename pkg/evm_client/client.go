package evm_client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const defaultDialTimeout = 5 * time.Second

// Dial 建立 evm rpc 连接，支持 http(s) 与 ws(s)
func Dial(ctx context.Context, rawurl string, timeout time.Duration) (*ethclient.Client, error) {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("dial evm client %s: %w", rawurl, err)
	}
	return client, nil
}

// Init evm client, 失败直接 panic
func Init(rawurl string) *ethclient.Client {
	client, err := Dial(context.Background(), rawurl, defaultDialTimeout)
	if err != nil {
		panic(fmt.Sprintf("Init evm client error: %v", err))
	}
	return client
}
