package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-astopo/pkg/config"
	"github.com/dd0wney/cluso-astopo/pkg/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:           "astopo",
		Short:         "AS-level Internet topology analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath string
	overrides  flagOverrides
)

// flagOverrides holds command-line values that win over the config file
type flagOverrides struct {
	logLevel       string
	classification string
	relationships  string
	prefix2asV4    string
	prefix2asV6    string
	as2org         string
	organizations  string
	strict         bool
	workers        int
	topN           int
	maxRejections  int
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.DefaultLogger().Error("command failed", logging.String("command", commandName()), logging.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandName names the subcommand being run, for the failure log
func commandName() string {
	cmd, _, err := rootCmd.Find(os.Args[1:])
	if err != nil || cmd == nil {
		return rootCmd.Name()
	}
	return cmd.Name()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&overrides.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&overrides.classification, "classification", "", "AS classification dataset")
	flags.StringVar(&overrides.relationships, "relationships", "", "AS relationship dataset")
	flags.StringVar(&overrides.prefix2asV4, "prefix2as-v4", "", "IPv4 prefix-to-AS dataset")
	flags.StringVar(&overrides.prefix2asV6, "prefix2as-v6", "", "IPv6 prefix-to-AS dataset")
	flags.StringVar(&overrides.as2org, "as2org", "", "AS-to-organization dataset")
	flags.StringVar(&overrides.organizations, "organizations", "", "Organization name dataset")
	flags.BoolVar(&overrides.strict, "strict", false, "Fail on malformed input lines")
	flags.IntVarP(&overrides.workers, "workers", "w", 0, "Cone enrichment workers")
	flags.IntVar(&overrides.topN, "top", 0, "Rows in each top-N ranking")
	flags.IntVar(&overrides.maxRejections, "max-rejections", -1, "Tier-1 rejection budget")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(browseCmd)
}

// loadConfig reads the config file, applies flag overrides and validates
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides.apply(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o flagOverrides) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("log-level", &cfg.Log.Level, o.logLevel)
	set("classification", &cfg.Inputs.Classification, o.classification)
	set("relationships", &cfg.Inputs.Relationships, o.relationships)
	set("prefix2as-v4", &cfg.Inputs.Prefix2ASv4, o.prefix2asV4)
	set("prefix2as-v6", &cfg.Inputs.Prefix2ASv6, o.prefix2asV6)
	set("as2org", &cfg.Inputs.AS2Org, o.as2org)
	set("organizations", &cfg.Inputs.Organizations, o.organizations)

	if cmd.Flags().Changed("strict") {
		cfg.Inputs.Strict = o.strict
	}
	if cmd.Flags().Changed("workers") {
		cfg.Cone.Workers = o.workers
	}
	if cmd.Flags().Changed("top") {
		cfg.Ranking.TopN = o.topN
	}
	if cmd.Flags().Changed("max-rejections") {
		cfg.Tier1.MaxRejections = o.maxRejections
	}
}

// newLogger writes structured logs to stderr so stdout stays clean for reports
func newLogger(cfg *config.Config) logging.Logger {
	logger := logging.NewLogger(os.Stderr, cfg.Log.Level)
	logging.SetDefaultLogger(logger)
	return logger
}
