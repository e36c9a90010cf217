package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

// Signer 持有私钥，按链 id 签名
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	signer  types.Signer
}

// NewSigner hexKey 不带 0x 前缀
func NewSigner(hexKey string, chainID *big.Int) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimSpace(hexKey))
	if err != nil {
		// 不打印原始 key
		return nil, &TxError{Kind: KindCredential, Err: fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)}
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.LatestSignerForChainID(chainID),
	}, nil
}

// Address 私钥对应地址
func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) Sign(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, s.signer, s.key)
	if err != nil {
		return nil, &TxError{Kind: KindCredential, Err: err}
	}
	return signed, nil
}
