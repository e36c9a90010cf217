package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultContract   = "0x5c952063c7fc8610FFDB798152D69F0B9550762b"
	DefaultEventTopic = "0x396d5e902b675b032348d3d2e9517ee8f0c4a926603fbc075d3d282ff00cad20"
	DefaultChainID    = 56

	tokenCreateEvent = "TokenCreate"
	buyMethod        = "buyTokenAMAP"
)

// launchpadABI 只包含用到的事件和方法
const launchpadABI = `[
  {
    "anonymous": false,
    "name": "TokenCreate",
    "type": "event",
    "inputs": [
      {"indexed": false, "name": "creator", "type": "address"},
      {"indexed": false, "name": "token", "type": "address"},
      {"indexed": false, "name": "requestId", "type": "uint256"},
      {"indexed": false, "name": "name", "type": "string"},
      {"indexed": false, "name": "symbol", "type": "string"},
      {"indexed": false, "name": "totalSupply", "type": "uint256"},
      {"indexed": false, "name": "launchTime", "type": "uint256"},
      {"indexed": false, "name": "launchFee", "type": "uint256"}
    ]
  },
  {
    "name": "buyTokenAMAP",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {"name": "token", "type": "address"},
      {"name": "to", "type": "address"},
      {"name": "funds", "type": "uint256"},
      {"name": "minAmount", "type": "uint256"}
    ],
    "outputs": []
  }
]`

var launchpad abi.ABI

func init() {
	var err error
	launchpad, err = abi.JSON(strings.NewReader(launchpadABI))
	if err != nil {
		panic(fmt.Sprintf("parse launchpad abi: %v", err))
	}
}

// TokenCreateArguments 事件的非 indexed 字段，按声明顺序
func TokenCreateArguments() abi.Arguments {
	return launchpad.Events[tokenCreateEvent].Inputs
}

// PackBuy 构造 buyTokenAMAP 调用数据
func PackBuy(token, recipient common.Address, amount, minOut *big.Int) ([]byte, error) {
	return launchpad.Pack(buyMethod, token, recipient, amount, minOut)
}

// PackTokenCreate 编码事件 data，测试和回放用
func PackTokenCreate(creator, token common.Address, requestID *big.Int, name, symbol string, totalSupply, launchTime, launchFee *big.Int) ([]byte, error) {
	return TokenCreateArguments().Pack(creator, token, requestID, name, symbol, totalSupply, launchTime, launchFee)
}
