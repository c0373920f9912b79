package seaport

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractCaller is the read-only subset of the RPC client the signer needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

var (
	getCounterSelector        = crypto.Keccak256([]byte("getCounter(address)"))[:4]
	isApprovedForAllSelector  = crypto.Keccak256([]byte("isApprovedForAll(address,address)"))[:4]
	setApprovalForAllSelector = crypto.Keccak256([]byte("setApprovalForAll(address,bool)"))[:4]
)

// Counter reads the offerer's current order counter from the Seaport
// contract. It must be fetched immediately before signing; a stale counter
// produces a signature the exchange rejects.
func Counter(ctx context.Context, caller ContractCaller, offerer common.Address) (*big.Int, error) {
	data := make([]byte, 0, 4+32)
	data = append(data, getCounterSelector...)
	data = append(data, common.LeftPadBytes(offerer.Bytes(), 32)...)

	to := VerifyingContract
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("getCounter(%s): %w", offerer.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("getCounter returned empty result")
	}
	return new(big.Int).SetBytes(out), nil
}

// IsApprovedForAll reports whether operator may transfer owner's tokens on
// the given NFT contract.
func IsApprovedForAll(ctx context.Context, caller ContractCaller, nft, owner, operator common.Address) (bool, error) {
	data := make([]byte, 0, 4+64)
	data = append(data, isApprovedForAllSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(operator.Bytes(), 32)...)

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &nft, Data: data})
	if err != nil {
		return false, fmt.Errorf("isApprovedForAll(%s, %s): %w", owner.Hex(), operator.Hex(), err)
	}
	if len(out) == 0 {
		return false, fmt.Errorf("isApprovedForAll returned empty result")
	}
	return new(big.Int).SetBytes(out).Sign() != 0, nil
}

// SetApprovalForAllData builds the calldata granting (or revoking) operator
// approval on an NFT contract.
func SetApprovalForAllData(operator common.Address, approved bool) []byte {
	flag := make([]byte, 32)
	if approved {
		flag[31] = 1
	}
	data := make([]byte, 0, 4+64)
	data = append(data, setApprovalForAllSelector...)
	data = append(data, common.LeftPadBytes(operator.Bytes(), 32)...)
	data = append(data, flag...)
	return data
}
