package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type profilesCmd struct {
	configFlags
}

func (*profilesCmd) Name() string     { return "profiles" }
func (*profilesCmd) Synopsis() string { return "list the configured portfolio profiles" }
func (*profilesCmd) Usage() string {
	return `treasuryctl profiles [-config <file>]

  Lists every profile with its route, default addresses and balance sources.
`
}

func (c *profilesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file (defaults to CONFIG_PATH or config/config.yml)")
	f.StringVar(&c.logLevel, "log", "warn", "log level")
}

func (c *profilesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, app, zapLogger, err := c.build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer zapLogger.Sync()
	defer app.Close()

	var b strings.Builder
	b.WriteString("| Profile | Route | Addresses | LP | L2 | Merge |\n")
	b.WriteString("|---|---|---:|---|---|---|\n")
	for _, p := range app.Profiles.Profiles() {
		l2 := "-"
		if p.L2 != nil {
			l2 = fmt.Sprintf("%s (%d tokens)", p.L2.Network.Identifier, len(p.L2.Tokens))
		}
		fmt.Fprintf(&b, "| %s | `%s` | %d | %t | %s | %s |\n",
			p.Name, p.Route, len(p.DefaultAddresses), p.LPEnabled, l2, p.MergeStrategy)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
