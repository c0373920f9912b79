// Package wallet wraps the bot's signing key and blockchain RPC access:
// personal-message and typed-data signatures, gas queries, contract reads,
// and transaction broadcast.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	eth     *ethclient.Client
}

// New parses a hex private key (with or without 0x prefix) and binds it to
// an RPC client. eth may be nil only in tests that never touch the chain.
func New(privateKeyHex string, chainID int64, eth *ethclient.Client) (*Wallet, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		eth:     eth,
	}, nil
}

func (w *Wallet) Address() common.Address   { return w.address }
func (w *Wallet) ChainID() *big.Int         { return new(big.Int).Set(w.chainID) }
func (w *Wallet) Client() *ethclient.Client { return w.eth }

// SignMessage produces an EIP-191 personal-message signature over msg,
// returned as a 0x-prefixed hex string with the legacy 27/28 recovery id.
func (w *Wallet) SignMessage(msg string) (string, error) {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	digest := crypto.Keccak256Hash([]byte(prefixed))
	sig, err := crypto.Sign(digest.Bytes(), w.key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig[64] += 27
	return "0x" + common.Bytes2Hex(sig), nil
}

// SignTypedData hashes and signs EIP-712 typed data.
func (w *Wallet) SignTypedData(td apitypes.TypedData) (string, error) {
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return "", fmt.Errorf("hash typed data: %w", err)
	}
	sig, err := crypto.Sign(digest, w.key)
	if err != nil {
		return "", fmt.Errorf("sign typed data: %w", err)
	}
	sig[64] += 27
	return "0x" + common.Bytes2Hex(sig), nil
}

// GasPrice returns the RPC's suggested gas price in wei.
func (w *Wallet) GasPrice(ctx context.Context) (*big.Int, error) {
	return w.eth.SuggestGasPrice(ctx)
}

// EstimateGas estimates gas units for msg.
func (w *Wallet) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return w.eth.EstimateGas(ctx, msg)
}

// CallContract performs a read-only contract call against the latest block.
func (w *Wallet) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return w.eth.CallContract(ctx, msg, nil)
}

// SendTransaction signs and broadcasts a legacy transaction to `to` and
// returns it. It does not wait for the transaction to be mined.
func (w *Wallet) SendTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Transaction, error) {
	nonce, err := w.eth.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := w.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	if value == nil {
		value = new(big.Int)
	}
	if gasLimit == 0 {
		gasLimit, err = w.eth.EstimateGas(ctx, ethereum.CallMsg{
			From:  w.address,
			To:    &to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := w.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}
	return signed, nil
}

// WaitMined blocks until tx is mined or ctx is done.
func (w *Wallet) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, w.eth, tx)
}
