package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient        *ethclient.Client
	netDef           entity.NetworkDefinition
	rpcCallTimeout   time.Duration
	maxCallsPerBatch int
	logger           *zap.Logger
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			// This is a critical error during initialization, panic is appropriate
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
}

// EVMClientOptions configures NewEVMClient.
type EVMClientOptions struct {
	ConnectionTimeout time.Duration
	RPCCallTimeout    time.Duration
	MaxCallsPerBatch  int
}

// NewEVMClient creates a new EVM client for the given network definition.
// Every RPC URL is tried in order; a URL is accepted once it answers eth_chainId
// with the expected chain id.
func NewEVMClient(ctx context.Context, netDef entity.NetworkDefinition, opts EVMClientOptions, logger *zap.Logger) (*EVMClient, error) {
	initParsedERC20ABI()
	if opts.MaxCallsPerBatch <= 0 {
		opts.MaxCallsPerBatch = 100
	}
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = defaultProviderConnectionTimeout
	}
	if opts.RPCCallTimeout <= 0 {
		opts.RPCCallTimeout = defaultRPCCallTimeout
	}
	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		dialCtx, cancel := context.WithTimeout(ctx, opts.ConnectionTimeout)
		client, err := ethclient.DialContext(dialCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			continue
		}

		chainID, err := client.ChainID(dialCtx)
		cancel()
		if err != nil {
			client.Close()
			lastErr = fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
			continue
		}
		if netDef.ChainID != 0 && chainID.Uint64() != netDef.ChainID {
			client.Close()
			lastErr = fmt.Errorf("chainID mismatch for %s: expected %d, got %d", rpcURL, netDef.ChainID, chainID.Uint64())
			continue
		}

		return &EVMClient{
			ethClient:        client,
			netDef:           netDef,
			rpcCallTimeout:   opts.RPCCallTimeout,
			maxCallsPerBatch: opts.MaxCallsPerBatch,
			logger:           logger.Named("EVMClient").With(zap.String("network", netDef.Identifier)),
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URL configured")
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
// Per-item failures are reported in BalanceResultItem.Error; a failed batch fails the call.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	results := make([]entity.BalanceResultItem, 0, len(requests))
	for start := 0; start < len(requests); start += c.maxCallsPerBatch {
		end := start + c.maxCallsPerBatch
		if end > len(requests) {
			end = len(requests)
		}
		chunk, err := c.getBalancesBatch(ctx, requests[start:end])
		metrics.ObserveUpstream("rpc_"+c.netDef.Identifier, err)
		if err != nil {
			return nil, err
		}
		results = append(results, chunk...)
	}
	return results, nil
}

func (c *EVMClient) getBalancesBatch(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			WalletAddress: reqItem.WalletAddress,
			TokenAddress:  reqItem.TokenAddress,
			TokenSymbol:   reqItem.TokenSymbol,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			callData, err := parsedERC20ABI.Pack("balanceOf", common.HexToAddress(reqItem.WalletAddress))
			if err != nil {
				return nil, fmt.Errorf("failed to pack balanceOf for %s: %w", reqItem.TokenSymbol, err)
			}
			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.TokenAddress),
				"data": hexutil.Bytes(callData),
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			}
		default:
			return nil, fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.TokenSymbol)
		}
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return nil, fmt.Errorf("RPC batch call on %s failed: %w", c.netDef.Identifier, err)
	}

	for i, elem := range batchElems {
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			result, ok := elem.Result.(*hexutil.Big)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s", requests[i].WalletAddress)
				continue
			}
			results[i].Balance = (*big.Int)(result)
		case entity.TokenBalanceRequest:
			result, ok := elem.Result.(*hexutil.Bytes)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode token balance for %s", requests[i].TokenSymbol)
				continue
			}
			if len(*result) == 0 {
				results[i].Balance = big.NewInt(0)
				continue
			}
			unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
			if err != nil {
				results[i].Error = fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", requests[i].TokenSymbol, err, hexutil.Encode(*result))
				continue
			}
			balance, ok := unpacked[0].(*big.Int)
			if !ok {
				results[i].Error = fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", requests[i].TokenSymbol, unpacked[0])
				continue
			}
			results[i].Balance = balance
		}
	}
	return results, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close closes the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

var _ port.BlockchainClient = (*EVMClient)(nil)
