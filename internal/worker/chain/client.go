package chain

import (
	"context"
	"math/big"
	"time"

	"web3-sniper/pkg/evm_client"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client 链读写接口，*ethclient.Client 直接满足
type Client interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Dial 连接节点并做一次 BlockNumber 探活
func Dial(ctx context.Context, rawurl string, timeout time.Duration) (*ethclient.Client, uint64, error) {
	client, err := evm_client.Dial(ctx, rawurl, timeout)
	if err != nil {
		return nil, 0, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	head, err := client.BlockNumber(probeCtx)
	if err != nil {
		client.Close()
		return nil, 0, err
	}
	return client, head, nil
}

// FilterQuery 订阅过滤条件：合约地址 + 事件 topic
func FilterQuery(contract common.Address, topic common.Hash) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{topic}},
	}
}
