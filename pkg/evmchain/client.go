// Package evmchain is the bridge's EVM-side adapter: the Client the Bridge
// Service drives for wTKN balance reads and mint-receipt signing, and the
// Watcher that observes the contract for SwapToNative events. The Client is
// an ethclient.Client plus a private key for signing, with a scan cursor
// tracked for readiness checks.
package evmchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/evmchain/contracts"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

var _ bridge.EvmClient = (*Client)(nil)

// Client is the EVM-chain adapter: reads wTKN balances and signs mint
// receipts with the bridge's signing key. It implements bridge.EvmClient.
type Client struct {
	cfg        *config.EvmConfig
	client     *ethclient.Client
	wsClient   *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    int64
	tokenAddr  common.Address
	token      *contracts.Wtkn
	logger     *zap.Logger

	mu               sync.RWMutex
	lastScannedBlock uint64
}

// NewClient dials the configured RPC (and, if set, websocket) endpoints and
// loads the wTKN contract binding.
func NewClient(cfg *config.EvmConfig, signerKeyHex string, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM RPC: %w", err)
	}

	var wsClient *ethclient.Client
	if cfg.WSUrl != "" {
		wsClient, err = ethclient.Dial(cfg.WSUrl)
		if err != nil {
			logger.Warn("failed to connect to EVM websocket, falling back to polling", zap.Error(err))
		}
	}

	privateKey, err := crypto.HexToECDSA(signerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to load EVM signer key: %w", err)
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	tokenAddr := common.HexToAddress(cfg.TokenContract)
	token, err := contracts.NewWtkn(tokenAddr, client)
	if err != nil {
		return nil, fmt.Errorf("failed to load wTKN contract: %w", err)
	}

	logger.Info("connected to EVM chain",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("token_contract", tokenAddr.Hex()),
		zap.String("signer_address", address.Hex()))

	return &Client{
		cfg:        cfg,
		client:     client,
		wsClient:   wsClient,
		privateKey: privateKey,
		address:    address,
		chainID:    cfg.ChainID,
		tokenAddr:  tokenAddr,
		token:      token,
		logger:     logger,
	}, nil
}

// Close releases the underlying RPC connections.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
	if c.wsClient != nil {
		c.wsClient.Close()
	}
}

// GetLastScannedBlock returns the highest block number the watcher has
// scanned, for readiness checks.
func (c *Client) GetLastScannedBlock() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastScannedBlock
}

func (c *Client) setLastScannedBlock(b uint64) {
	c.mu.Lock()
	if b > c.lastScannedBlock {
		c.lastScannedBlock = b
	}
	c.mu.Unlock()
}

// GetLatestBlockNumber returns the chain head.
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// BalanceOf reads the wTKN balance of an EVM address, implementing
// bridge.EvmClient.
func (c *Client) BalanceOf(ctx context.Context, evm string) (money.Units, error) {
	bal, err := c.token.BalanceOf(&bind.CallOpts{Context: ctx}, common.HexToAddress(evm))
	if err != nil {
		return money.Zero(), fmt.Errorf("balanceOf: %w", err)
	}
	return money.FromBigInt(bal), nil
}

// ChainID returns the configured EVM chain id, implementing bridge.EvmClient.
func (c *Client) ChainID() int64 {
	return c.chainID
}

var mintReceiptArgs = abi.Arguments{
	{Type: mustType("address")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// SignMintReceipt signs keccak256(abi.encode(evm, amount, uuid, chainId))
// with the bridge's EVM key, implementing bridge.EvmClient. The wTKN
// contract's redeemMintReceipt recovers this signature against the same
// packing to authorize the mint.
func (c *Client) SignMintReceipt(evm string, amount money.Units, uuid *big.Int) (string, error) {
	packed, err := mintReceiptArgs.Pack(common.HexToAddress(evm), amount.BigInt(), uuid, big.NewInt(c.chainID))
	if err != nil {
		return "", fmt.Errorf("failed to encode mint receipt: %w", err)
	}
	digest := crypto.Keccak256Hash(packed)
	ethSignedHash := crypto.Keccak256Hash(
		[]byte("\x19Ethereum Signed Message:\n32"),
		digest.Bytes(),
	)
	signature, err := crypto.Sign(ethSignedHash.Bytes(), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign mint receipt: %w", err)
	}
	if signature[64] < 27 {
		signature[64] += 27
	}
	return "0x" + common.Bytes2Hex(signature), nil
}
