package service

import (
	"context"
	"fmt"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type balanceReaderImpl struct {
	l2Clients      port.BlockchainClientProvider
	lp             port.LPPositionSource
	maxConcurrency int
	logger         *zap.Logger
}

// NewBalanceReader creates a port.BalanceReader. l2Clients and lp may be nil when no
// profile uses an L2 sweep or LP positions.
func NewBalanceReader(l2Clients port.BlockchainClientProvider, lp port.LPPositionSource, maxConcurrency int, logger *zap.Logger) port.BalanceReader {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &balanceReaderImpl{
		l2Clients:      l2Clients,
		lp:             lp,
		maxConcurrency: maxConcurrency,
		logger:         logger.Named("BalanceReader"),
	}
}

// ReadBalances implements port.BalanceReader. Balances come back grouped by source:
// chain provider balances in address order, then L2 balances, then LP positions.
// A failing chain provider or L2 call fails the whole read; LP failures only drop LP rows.
func (r *balanceReaderImpl) ReadBalances(ctx context.Context, chain port.ChainDataClient, profile *entity.ChainProfile, addresses []string) ([]entity.RawBalance, error) {
	perAddress := make([][]entity.RawBalance, len(addresses))
	var l2Balances, lpBalances []entity.RawBalance

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.maxConcurrency)

	for i, addr := range addresses {
		i, addr := i, addr
		eg.Go(func() error {
			balances, err := chain.GetTokenBalances(childCtx, addr)
			if err != nil {
				return fmt.Errorf("token balances of %s: %w", addr, err)
			}
			for j := range balances {
				balances[j].ParentAddress = addr
			}
			perAddress[i] = balances
			return nil
		})
	}

	if profile.L2 != nil && len(profile.L2.Tokens) > 0 && r.l2Clients != nil {
		eg.Go(func() error {
			balances, err := r.readL2(childCtx, profile.L2, addresses)
			if err != nil {
				return err
			}
			l2Balances = balances
			return nil
		})
	}

	if profile.LPEnabled && r.lp != nil && len(addresses) > 0 {
		eg.Go(func() error {
			balances, err := r.lp.GetPositionBalances(childCtx, addresses[0])
			if err != nil {
				r.logger.Warn("LP positions unavailable, continuing without them",
					zap.String("owner", addresses[0]), zap.Error(err))
				return nil
			}
			lpBalances = balances
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []entity.RawBalance
	for _, balances := range perAddress {
		all = append(all, balances...)
	}
	all = append(all, l2Balances...)
	all = append(all, lpBalances...)
	r.logger.Debug("Balances read", zap.String("profile", profile.Name),
		zap.Int("addresses", len(addresses)), zap.Int("balances", len(all)),
		zap.Int("l2", len(l2Balances)), zap.Int("lp", len(lpBalances)))
	return all, nil
}

// readL2 reads every bridged token of every owner on the L2 network. Balances are
// reported under the L1 contract address so they price and merge with L1 holdings.
func (r *balanceReaderImpl) readL2(ctx context.Context, src *entity.L2Source, owners []string) ([]entity.RawBalance, error) {
	client, err := r.l2Clients.GetClient(ctx, src.Network)
	if err != nil {
		return nil, fmt.Errorf("l2 client for %s: %w", src.Network.Identifier, err)
	}

	requests := make([]entity.BalanceRequestItem, 0, len(owners)*len(src.Tokens))
	l1Addresses := make([]string, 0, cap(requests))
	for _, owner := range owners {
		for _, token := range src.Tokens {
			requests = append(requests, entity.BalanceRequestItem{
				Type:          entity.TokenBalanceRequest,
				WalletAddress: owner,
				TokenAddress:  token.L2Address,
				TokenSymbol:   token.Symbol,
			})
			l1Addresses = append(l1Addresses, token.L1Address)
		}
	}

	results, err := client.GetBalances(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("l2 balances on %s: %w", src.Network.Identifier, err)
	}

	var balances []entity.RawBalance
	for i, res := range results {
		if res.Error != nil {
			r.logger.Warn("Skipping L2 balance", zap.String("network", src.Network.Identifier),
				zap.String("token", res.TokenSymbol), zap.String("wallet", res.WalletAddress), zap.Error(res.Error))
			continue
		}
		if res.Balance == nil || res.Balance.Sign() == 0 {
			continue
		}
		balances = append(balances, entity.RawBalance{
			ParentAddress:   res.WalletAddress,
			ContractAddress: l1Addresses[i],
			L2Address:       res.TokenAddress,
			Balance:         hexutil.EncodeBig(res.Balance),
		})
	}
	return balances, nil
}

// ReadNativeBalance implements port.BalanceReader.
func (r *balanceReaderImpl) ReadNativeBalance(ctx context.Context, chain port.ChainDataClient, profile *entity.ChainProfile, owner string) (decimal.Decimal, error) {
	wei, err := chain.GetNativeBalance(ctx, owner)
	if err != nil {
		return decimal.Zero, fmt.Errorf("native balance of %s: %w", owner, err)
	}
	amount := utils.ScaleBigInt(wei, profile.Native.Decimals)

	if profile.L2 == nil || !profile.L2.IncludeNative || r.l2Clients == nil {
		return amount, nil
	}

	client, err := r.l2Clients.GetClient(ctx, profile.L2.Network)
	if err != nil {
		return decimal.Zero, fmt.Errorf("l2 client for %s: %w", profile.L2.Network.Identifier, err)
	}
	results, err := client.GetBalances(ctx, []entity.BalanceRequestItem{{
		Type:          entity.NativeBalanceRequest,
		WalletAddress: owner,
		TokenSymbol:   profile.Native.Symbol,
	}})
	if err != nil {
		return decimal.Zero, fmt.Errorf("l2 native balance of %s: %w", owner, err)
	}
	for _, res := range results {
		if res.Error != nil {
			r.logger.Warn("Skipping L2 native balance", zap.String("wallet", owner), zap.Error(res.Error))
			continue
		}
		amount = amount.Add(utils.ScaleBigInt(res.Balance, profile.L2.Network.Decimals))
	}
	return amount, nil
}
