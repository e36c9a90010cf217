package ingestor

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"web3-sniper/internal/worker/chain"
	"web3-sniper/internal/worker/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrUnexpectedTopic    = errors.New("unexpected event topic")
	ErrLaunchTimeOverflow = errors.New("launch time out of int64 range")
)

// Decoder 把 TokenCreate 日志解码为 TokenCreateEvent，纯内存计算
type Decoder struct {
	topic common.Hash
	args  abi.Arguments
}

func NewDecoder(topic common.Hash) *Decoder {
	return &Decoder{topic: topic, args: chain.TokenCreateArguments()}
}

// Decode now 为接收时间
func (d *Decoder) Decode(lg types.Log, now time.Time) (model.TokenCreateEvent, error) {
	if len(lg.Topics) == 0 || lg.Topics[0] != d.topic {
		return model.TokenCreateEvent{}, ErrUnexpectedTopic
	}

	values, err := d.args.Unpack(lg.Data)
	if err != nil {
		return model.TokenCreateEvent{}, fmt.Errorf("unpack TokenCreate: %w", err)
	}
	if len(values) != 8 {
		return model.TokenCreateEvent{}, fmt.Errorf("unpack TokenCreate: got %d fields", len(values))
	}

	creator, ok1 := values[0].(common.Address)
	token, ok2 := values[1].(common.Address)
	requestID, ok3 := values[2].(*big.Int)
	name, ok4 := values[3].(string)
	symbol, ok5 := values[4].(string)
	totalSupply, ok6 := values[5].(*big.Int)
	launchTime, ok7 := values[6].(*big.Int)
	launchFee, ok8 := values[7].(*big.Int)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8) {
		return model.TokenCreateEvent{}, errors.New("unpack TokenCreate: unexpected field types")
	}
	if !launchTime.IsInt64() {
		return model.TokenCreateEvent{}, fmt.Errorf("%w: %s", ErrLaunchTimeOverflow, launchTime)
	}

	return model.TokenCreateEvent{
		TokenAddress:    token.Hex(),
		Name:            name,
		Symbol:          symbol,
		Creator:         creator.Hex(),
		Timestamp:       now,
		TransactionHash: lg.TxHash.Hex(),
		LogIndex:        lg.Index,
		BlockNumber:     lg.BlockNumber,
		InitialSupply:   totalSupply.String(),
		RequestID:       requestID.String(),
		LaunchTime:      launchTime.Int64(),
		LaunchFee:       launchFee.String(),
	}, nil
}
