package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is used when CONFIG_PATH is not set.
	DefaultPath = "config/config.yml"

	defaultOverrideAddress = "0xba962a81f78837751be8a177378d582f337084e6"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                   string   `yaml:"port"`
	ReadTimeoutSeconds     int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds    int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds     int      `yaml:"idleTimeoutSeconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdownTimeoutSeconds"`
	CacheTimeSeconds       int      `yaml:"cacheTimeSeconds"` // s-maxage, stale-while-revalidate is twice that
	AllowOrigins           []string `yaml:"allowOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// ChainProviderConfig configures the account-level chain data provider (Alchemy).
type ChainProviderConfig struct {
	URLTemplate          string `yaml:"urlTemplate"` // contains {apiKey}
	DefaultAPIKey        string `yaml:"defaultApiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxPages             int    `yaml:"maxPages"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	Platform             string `yaml:"platform"`
	VsCurrency           string `yaml:"vsCurrency"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxTokensPerRequest  int    `yaml:"maxTokensPerRequest"`
}

// CryptoCompareConfig configures the secondary price source.
type CryptoCompareConfig struct {
	APIKey               string  `yaml:"apiKey"`
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond   float64 `yaml:"rateLimitPerSecond"`
	RateLimitBurst       int     `yaml:"rateLimitBurst"`
}

// SubgraphConfig configures the LP positions subgraph.
type SubgraphConfig struct {
	URL                  string `yaml:"url"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// NetworkNodeConfig holds configuration for a specific blockchain network.
type NetworkNodeConfig struct {
	Identifier           string   `yaml:"identifier"` // e.g., "mantle"
	Name                 string   `yaml:"name"`
	ChainID              uint64   `yaml:"chainID"`
	RPCURL               string   `yaml:"rpcURL"`
	FallbackRPCURLs      []string `yaml:"fallbackRpcURLs"`
	NativeSymbol         string   `yaml:"nativeSymbol"`
	Decimals             int32    `yaml:"decimals"`
	RPCCallTimeoutMillis int64    `yaml:"rpcCallTimeoutMillis"`
	MaxCallsPerBatch     int      `yaml:"maxCallsPerBatch"`
}

// PriceResolverConfig holds the fallback rules of the price resolver.
type PriceResolverConfig struct {
	OverrideAddress          string   `yaml:"overrideAddress"`
	OverridePriceUSD         string   `yaml:"overridePriceUSD"`
	BlockedSymbolAddresses   []string `yaml:"blockedSymbolAddresses"`
	MaxSymbolLength          int      `yaml:"maxSymbolLength"`
	RejectedSymbolSubstrings []string `yaml:"rejectedSymbolSubstrings"`
}

// PortfolioServiceConfig holds configuration for the portfolio aggregator.
type PortfolioServiceConfig struct {
	MaxConcurrency int `yaml:"maxConcurrency"`
}

// NativeConfig describes the native coin line item of a profile.
type NativeConfig struct {
	Address     string `yaml:"address"`
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol"`
	Logo        string `yaml:"logo"`
	Decimals    int32  `yaml:"decimals"`
	CoinGeckoID string `yaml:"coinGeckoId"`
}

// LPConfig toggles the LP positions source.
type LPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// L2Config configures the L2 balance sweep of a profile.
type L2Config struct {
	Network       string `yaml:"network"`
	TokensFile    string `yaml:"tokensFile"`
	L1ChainID     uint64 `yaml:"l1ChainID"`
	IncludeNative bool   `yaml:"includeNative"`
}

// ProfileConfig is one endpoint variant of the portfolio API.
type ProfileConfig struct {
	Name             string       `yaml:"name"`
	Route            string       `yaml:"route"`
	DefaultAddresses []string     `yaml:"defaultAddresses"`
	AddressesFile    string       `yaml:"addressesFile"`
	Native           NativeConfig `yaml:"native"`
	LP               LPConfig     `yaml:"lp"`
	L2               *L2Config    `yaml:"l2"`
	IncludeNames     []string     `yaml:"includeNames"`
	ExcludeNames     []string     `yaml:"excludeNames"`
	MergeStrategy    string       `yaml:"mergeStrategy"`
}

// CacheConfig configures the in-process response cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttlSeconds"`
}

// SwaggerConfig configures the static API documentation.
type SwaggerConfig struct {
	Disabled bool   `yaml:"disabled"`
	SpecPath string `yaml:"specPath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Logging          LoggingConfig          `yaml:"logging"`
	ChainProvider    ChainProviderConfig    `yaml:"chainProvider"`
	CoinGecko        CoinGeckoConfig        `yaml:"coinGecko"`
	CryptoCompare    CryptoCompareConfig    `yaml:"cryptoCompare"`
	Subgraph         SubgraphConfig         `yaml:"subgraph"`
	Networks         []NetworkNodeConfig    `yaml:"networks"`
	PriceResolver    PriceResolverConfig    `yaml:"priceResolver"`
	PortfolioService PortfolioServiceConfig `yaml:"portfolioService"`
	Profiles         []ProfileConfig        `yaml:"profiles"`
	Cache            CacheConfig            `yaml:"cache"`
	Swagger          SwaggerConfig          `yaml:"swagger"`
}

// Millis converts a millisecond setting into a duration.
func Millis(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// PathFromEnv returns CONFIG_PATH or the default config location.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads a .env file into the environment when one is present.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logrus.Warnf("Failed to load env file %s: %v", p, err)
			}
			continue
		}
		logrus.Infof("Loaded environment from %s", p)
	}
}

// Load reads the YAML configuration file from the given path, expands ${VAR}
// references from the environment and fills in defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 120
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}
	if cfg.Server.CacheTimeSeconds <= 0 {
		cfg.Server.CacheTimeSeconds = 1800
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.ChainProvider.URLTemplate == "" {
		cfg.ChainProvider.URLTemplate = "https://eth-mainnet.g.alchemy.com/v2/{apiKey}"
		logrus.Infof("ChainProvider.URLTemplate not set, defaulting to %s", cfg.ChainProvider.URLTemplate)
	}
	if cfg.ChainProvider.DefaultAPIKey == "" {
		cfg.ChainProvider.DefaultAPIKey = os.Getenv("ALCHEMY_API_KEY")
	}
	if cfg.ChainProvider.RequestTimeoutMillis <= 0 {
		cfg.ChainProvider.RequestTimeoutMillis = 20000
	}
	if cfg.ChainProvider.MaxPages <= 0 {
		cfg.ChainProvider.MaxPages = 20
	}

	if cfg.CoinGecko.BaseURL == "" {
		if cfg.CoinGecko.APIKey != "" {
			cfg.CoinGecko.BaseURL = "https://pro-api.coingecko.com/api/v3"
		} else {
			cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		}
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.Platform == "" {
		cfg.CoinGecko.Platform = "ethereum"
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.MaxTokensPerRequest <= 0 {
		cfg.CoinGecko.MaxTokensPerRequest = 100
	}

	if cfg.CryptoCompare.BaseURL == "" {
		cfg.CryptoCompare.BaseURL = "https://min-api.cryptocompare.com"
	}
	if cfg.CryptoCompare.RequestTimeoutMillis <= 0 {
		cfg.CryptoCompare.RequestTimeoutMillis = 10000
	}
	if cfg.CryptoCompare.RateLimitPerSecond <= 0 {
		cfg.CryptoCompare.RateLimitPerSecond = 10
	}
	if cfg.CryptoCompare.RateLimitBurst <= 0 {
		cfg.CryptoCompare.RateLimitBurst = 5
	}

	if cfg.Subgraph.URL == "" {
		cfg.Subgraph.URL = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"
	}
	if cfg.Subgraph.RequestTimeoutMillis <= 0 {
		cfg.Subgraph.RequestTimeoutMillis = 15000
	}

	for i := range cfg.Networks {
		n := &cfg.Networks[i]
		if n.Decimals <= 0 {
			n.Decimals = 18
		}
		if n.RPCCallTimeoutMillis <= 0 {
			n.RPCCallTimeoutMillis = 15000
		}
		if n.MaxCallsPerBatch <= 0 {
			n.MaxCallsPerBatch = 100
		}
		if n.Name == "" {
			n.Name = n.Identifier
		}
	}

	if cfg.PriceResolver.OverrideAddress == "" {
		cfg.PriceResolver.OverrideAddress = defaultOverrideAddress
	}
	if cfg.PriceResolver.OverridePriceUSD == "" {
		cfg.PriceResolver.OverridePriceUSD = "650"
	}
	if cfg.PriceResolver.BlockedSymbolAddresses == nil {
		cfg.PriceResolver.BlockedSymbolAddresses = []string{defaultOverrideAddress}
	}
	if cfg.PriceResolver.MaxSymbolLength <= 0 {
		cfg.PriceResolver.MaxSymbolLength = 28
	}
	if cfg.PriceResolver.RejectedSymbolSubstrings == nil {
		cfg.PriceResolver.RejectedSymbolSubstrings = []string{".com"}
	}

	if cfg.PortfolioService.MaxConcurrency <= 0 {
		cfg.PortfolioService.MaxConcurrency = 10
	}

	if len(cfg.Profiles) == 0 {
		logrus.Warn("No profiles configured, registering the default portfolio profile")
		cfg.Profiles = []ProfileConfig{{
			Name:  "portfolio",
			Route: "/api/v1/portfolio",
			DefaultAddresses: []string{
				"0x78605Df79524164911C144801f41e9811B7DB73D",
				"0x5C128d25A21f681e678cB050E551A895c9309945",
			},
			ExcludeNames: []string{"BitDAO"},
		}}
	}
	for i := range cfg.Profiles {
		p := &cfg.Profiles[i]
		if p.Route == "" {
			p.Route = "/api/v1/" + p.Name
		}
		if p.MergeStrategy == "" {
			p.MergeStrategy = "symbol"
		}
		if p.Native.Address == "" {
			p.Native.Address = "eth"
		}
		if p.Native.Name == "" {
			p.Native.Name = "Ethereum"
		}
		if p.Native.Symbol == "" {
			p.Native.Symbol = "ETH"
		}
		if p.Native.Logo == "" {
			p.Native.Logo = "https://token-icons.s3.amazonaws.com/eth.png"
		}
		if p.Native.Decimals <= 0 {
			p.Native.Decimals = 18
		}
		if p.Native.CoinGeckoID == "" {
			p.Native.CoinGeckoID = "ethereum"
		}
		if p.L2 != nil && p.L2.L1ChainID == 0 {
			p.L2.L1ChainID = 1
		}
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = cfg.Server.CacheTimeSeconds
	}
	if cfg.Swagger.SpecPath == "" {
		cfg.Swagger.SpecPath = "./docs/swagger.yaml"
	}
}

func validate(cfg *Config) error {
	if !strings.Contains(cfg.ChainProvider.URLTemplate, "{apiKey}") {
		return fmt.Errorf("chainProvider.urlTemplate must contain {apiKey}")
	}

	networks := make(map[string]struct{}, len(cfg.Networks))
	for _, n := range cfg.Networks {
		if n.Identifier == "" {
			return fmt.Errorf("network without identifier")
		}
		networks[n.Identifier] = struct{}{}
	}

	routes := make(map[string]string, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile without name on route %s", p.Route)
		}
		if other, ok := routes[p.Route]; ok {
			return fmt.Errorf("profiles %s and %s share route %s", other, p.Name, p.Route)
		}
		routes[p.Route] = p.Name

		switch p.MergeStrategy {
		case "symbol", "address":
		default:
			return fmt.Errorf("profile %s: unknown mergeStrategy %q", p.Name, p.MergeStrategy)
		}
		if p.L2 != nil {
			if _, ok := networks[p.L2.Network]; !ok {
				return fmt.Errorf("profile %s: l2 network %q is not configured", p.Name, p.L2.Network)
			}
			if p.L2.TokensFile == "" {
				return fmt.Errorf("profile %s: l2 tokensFile is required", p.Name)
			}
		}
	}
	return nil
}

// Profile returns the profile with the given name.
func (c *Config) Profile(name string) (ProfileConfig, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileConfig{}, false
}

// Network returns the network with the given identifier.
func (c *Config) Network(identifier string) (NetworkNodeConfig, bool) {
	for _, n := range c.Networks {
		if n.Identifier == identifier {
			return n, true
		}
	}
	return NetworkNodeConfig{}, false
}
