package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentrelay/mcp-hub-go/pkg/mcphub"
)

var (
	configPath string
	envFile    string
	logLevel   string

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "mcphub",
	Short: "Discover and invoke tools across configured MCP servers",
	Long: `mcphub aggregates the tool catalogs of independently configured MCP
servers (HTTP or subprocess) into one namespaced registry and routes
invocations to the owning server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading env file %s: %w", envFile, err)
			}
		} else {
			// Best effort: a missing default .env is fine.
			_ = godotenv.Load()
		}

		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			level = logrus.InfoLevel
			log.Warnf("invalid log level %q, defaulting to info", logLevel)
		}
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mcphub.yaml", "server configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before resolving credentials")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// fileConfig is the on-disk configuration shape. Server entries stay raw
// maps so the normalizer owns all validation and defaulting.
type fileConfig struct {
	CacheTTL    string           `yaml:"cache_ttl"`
	CallTimeout string           `yaml:"call_timeout"`
	Servers     []map[string]any `yaml:"servers"`
}

func loadManager() (*mcphub.Manager, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}

	configs := mcphub.NormalizeServers(cfg.Servers)
	if len(configs) == 0 {
		return nil, fmt.Errorf("no usable servers in %s", configPath)
	}
	if dropped := len(cfg.Servers) - len(configs); dropped > 0 {
		log.Warnf("dropped %d malformed server entries", dropped)
	}

	opts := &mcphub.ManagerOptions{Logger: log}
	if cfg.CacheTTL != "" {
		if ttl, err := time.ParseDuration(cfg.CacheTTL); err == nil {
			opts.CacheTTL = ttl
		}
	}
	if cfg.CallTimeout != "" {
		if timeout, err := time.ParseDuration(cfg.CallTimeout); err == nil {
			opts.CallTimeout = timeout
		}
	}
	return mcphub.NewManager(configs, opts), nil
}
