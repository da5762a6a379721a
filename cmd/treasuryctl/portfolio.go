package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"treasury_api/internal/domain/entity"
	"treasury_api/internal/infrastructure/restapi"
	"treasury_api/internal/pkg/utils"

	"github.com/google/subcommands"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type portfolioCmd struct {
	configFlags
	profile   string
	apiKey    string
	addresses string
	format    string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value a set of treasury addresses once" }
func (*portfolioCmd) Usage() string {
	return `treasuryctl portfolio [-config <file>] [-profile <name>] [-key <alchemy key>] [-addresses a,b] [-format json|markdown]

  Runs one valuation with the configured profile and prints the snapshot.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file (defaults to CONFIG_PATH or config/config.yml)")
	f.StringVar(&c.logLevel, "log", "warn", "log level")
	f.StringVar(&c.profile, "profile", "portfolio", "profile name")
	f.StringVar(&c.apiKey, "key", "", "chain provider api key (defaults to the configured one)")
	f.StringVar(&c.addresses, "addresses", "", "comma separated addresses (defaults to the profile addresses)")
	f.StringVar(&c.format, "format", "markdown", "output format: json or markdown")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "markdown" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	cfg, app, zapLogger, err := c.build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer zapLogger.Sync()
	defer app.Close()

	profile, ok := app.Profiles.GetProfile(c.profile)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown profile %q\n", c.profile)
		return subcommands.ExitUsageError
	}
	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = cfg.ChainProvider.DefaultAPIKey
	}
	addresses := utils.SplitAddressList(c.addresses)
	if len(addresses) == 0 {
		addresses = profile.DefaultAddresses
	}

	snapshot, err := app.Portfolio.GetPortfolio(ctx, entity.PortfolioRequest{
		Profile:   profile,
		Addresses: addresses,
		APIKey:    apiKey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.format == "json" {
		out, err := json.MarshalIndent(restapi.NewPortfolioValue(snapshot), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}
	printMarkdown(portfolioMarkdown(profile.Name, snapshot))
	return subcommands.ExitSuccess
}

func portfolioMarkdown(profile string, snapshot *entity.PortfolioSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Treasury portfolio: %s\n\n", profile)
	fmt.Fprintf(&b, "**Total value:** $%s\n\n", snapshot.TotalValueInUSD.StringFixed(2))
	b.WriteString("| Symbol | Name | Amount | Price | Value | Share | Held by |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
	for _, t := range snapshot.Portfolio {
		name := t.Name
		if t.IsLP {
			name += " (LP)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | $%s | $%s | %s | `%s` |\n",
			t.Symbol, name, t.Amount.Round(4).String(), t.Price.String(), t.Value.StringFixed(2), t.PercentOfHoldings, t.ParentAddress)
	}
	return b.String()
}
