package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/groundex/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage groundex configuration",
	Long: `Manage groundex configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (GROUNDEX_*)
3. Config file (~/.groundex/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after applying the config file, environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprintln(out, string(yamlData))

		key := "(not set)"
		if cfg.LLM.APIKey != "" {
			key = "(set)"
		}
		fmt.Fprintf(out, "LLM API key: %s\n\n", key)

		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "  1. CLI flags")
		fmt.Fprintln(out, "  2. Environment variables (GROUNDEX_*, OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_BASE_URL)")
		fmt.Fprintln(out, "  3. Config file (~/.groundex/config.yaml)")
		fmt.Fprintln(out, "  4. Defaults")
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.groundex/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".groundex")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'groundex config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  groundex config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// writeDefaultConfig writes the default configuration as commented YAML
func writeDefaultConfig(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	_, err = fmt.Fprintf(f, `# groundex configuration file
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (GROUNDEX_*, e.g. GROUNDEX_LLM_PROVIDER=ollama)
#   3. This config file
#   4. Built-in defaults

%s
# API keys (recommended to use environment variables instead):
#   export OPENAI_API_KEY=sk-...
#   export ANTHROPIC_API_KEY=sk-ant-...
#   export OLLAMA_BASE_URL=http://localhost:11434
`, yamlData)
	if err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then GROUNDEX_* variables and flags, then provider credentials.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case cfgFile != "" || !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyOverrides(cfg)

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	if viper.GetBool("no_cache") {
		cfg.Cache.Enabled = false
	}
	if viper.GetBool("no_robots") {
		cfg.Robots.Enabled = false
	}
	return cfg, nil
}

// applyOverrides copies values set through viper (env or flags) onto cfg
func applyOverrides(cfg *model.Config) {
	str := func(key string, dst *string) {
		if viper.IsSet(key) {
			if v := viper.GetString(key); v != "" {
				*dst = v
			}
		}
	}
	boolean := func(key string, dst *bool) {
		if viper.IsSet(key) {
			*dst = viper.GetBool(key)
		}
	}
	integer := func(key string, dst *int) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	duration := func(key string, dst *time.Duration) {
		if viper.IsSet(key) {
			if d := viper.GetDuration(key); d > 0 {
				*dst = d
			}
		}
	}

	str("extraction.extractor", &cfg.Extraction.Extractor)
	str("extraction.lexicon_path", &cfg.Extraction.LexiconPath)
	boolean("extraction.features", &cfg.Extraction.Features)
	integer("extraction.max_text_bytes", &cfg.Extraction.MaxTextBytes)

	str("llm.provider", &cfg.LLM.Provider)
	str("llm.model", &cfg.LLM.Model)
	str("llm.api_key", &cfg.LLM.APIKey)
	str("llm.base_url", &cfg.LLM.BaseURL)
	integer("llm.timeout", &cfg.LLM.Timeout)
	integer("llm.max_tokens", &cfg.LLM.MaxTokens)

	duration("http.timeout", &cfg.HTTP.Timeout)
	str("http.user_agent", &cfg.HTTP.UserAgent)
	str("http.http_proxy", &cfg.HTTP.HTTPProxy)
	str("http.https_proxy", &cfg.HTTP.HTTPSProxy)
	str("http.no_proxy", &cfg.HTTP.NoProxy)
	boolean("http.insecure_tls", &cfg.HTTP.InsecureTLS)

	boolean("robots.enabled", &cfg.Robots.Enabled)
	boolean("cache.enabled", &cfg.Cache.Enabled)
	str("cache.dir", &cfg.Cache.Dir)
	integer("concurrency.workers", &cfg.Concurrency.Workers)
	str("store.path", &cfg.Store.Path)
	str("output.format", &cfg.Output.Format)
	boolean("output.verbose", &cfg.Output.Verbose)
	boolean("output.include_footer", &cfg.Output.IncludeFooter)
}
