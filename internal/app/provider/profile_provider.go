package provider

import (
	"fmt"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/infrastructure/configloader"
	"treasury_api/internal/pkg/utils"

	"go.uber.org/zap"
)

type profileProviderImpl struct {
	profiles []*entity.ChainProfile
	byName   map[string]*entity.ChainProfile
}

// NewProfileProvider resolves every configured profile into an entity.ChainProfile:
// default addresses are merged with the addresses file, the L2 network and its
// bridged token list are looked up.
func NewProfileProvider(
	profiles []configloader.ProfileConfig,
	networks port.NetworkDefinitionProvider,
	tokens port.TokenProvider,
	wallets port.WalletProvider,
	logger *zap.Logger,
) (port.ProfileProvider, error) {
	logger = logger.Named("ProfileProvider")
	p := &profileProviderImpl{byName: make(map[string]*entity.ChainProfile, len(profiles))}

	for _, pc := range profiles {
		profile, err := buildProfile(pc, networks, tokens, wallets)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", pc.Name, err)
		}
		p.profiles = append(p.profiles, profile)
		p.byName[profile.Name] = profile

		fields := []zap.Field{
			zap.String("profile", profile.Name),
			zap.String("route", profile.Route),
			zap.Int("defaultAddresses", len(profile.DefaultAddresses)),
			zap.Bool("lp", profile.LPEnabled),
		}
		if profile.L2 != nil {
			fields = append(fields, zap.String("l2", profile.L2.Network.Identifier), zap.Int("l2Tokens", len(profile.L2.Tokens)))
		}
		logger.Info("Profile registered", fields...)
	}
	return p, nil
}

func buildProfile(pc configloader.ProfileConfig, networks port.NetworkDefinitionProvider, tokens port.TokenProvider, wallets port.WalletProvider) (*entity.ChainProfile, error) {
	addresses := append([]string{}, pc.DefaultAddresses...)
	if pc.AddressesFile != "" {
		fromFile, err := wallets.GetWallets(pc.AddressesFile)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, fromFile...)
	}
	normalized, err := utils.NormalizeAddresses(addresses)
	if err != nil {
		return nil, fmt.Errorf("default addresses: %w", err)
	}

	profile := &entity.ChainProfile{
		Name:             pc.Name,
		Route:            pc.Route,
		DefaultAddresses: normalized,
		Native: entity.NativeAsset{
			Address:     pc.Native.Address,
			Name:        pc.Native.Name,
			Symbol:      pc.Native.Symbol,
			Logo:        pc.Native.Logo,
			Decimals:    pc.Native.Decimals,
			CoinGeckoID: pc.Native.CoinGeckoID,
		},
		LPEnabled:     pc.LP.Enabled,
		IncludeNames:  pc.IncludeNames,
		ExcludeNames:  pc.ExcludeNames,
		MergeStrategy: entity.MergeStrategy(pc.MergeStrategy),
	}

	if pc.L2 != nil {
		netDef, ok := networks.GetNetworkDefinitionByName(pc.L2.Network)
		if !ok {
			return nil, fmt.Errorf("unknown l2 network %q", pc.L2.Network)
		}
		bridged, err := tokens.GetBridgedTokens(pc.L2.TokensFile, pc.L2.L1ChainID, netDef.ChainID)
		if err != nil {
			return nil, err
		}
		profile.L2 = &entity.L2Source{
			Network:       netDef,
			Tokens:        bridged,
			IncludeNative: pc.L2.IncludeNative,
		}
	}
	return profile, nil
}

// Profiles returns the profiles in configuration order.
func (p *profileProviderImpl) Profiles() []*entity.ChainProfile {
	return p.profiles
}

// GetProfile returns a profile by name.
func (p *profileProviderImpl) GetProfile(name string) (*entity.ChainProfile, bool) {
	profile, ok := p.byName[name]
	return profile, ok
}
