package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/groundex/internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "groundex",
	Short: "groundex - grounding event extraction from maritime accident reports",
	Long: `groundex reads maritime accident reports and extracts structured grounding
events: what happened (event type and trigger words) and who, where, why,
when and with what consequences (argument roles).

Reports can be typed, read from files or stdin, fetched from the web or
crawled from an investigation board's index page. Three extractors are
available: keyword patterns, a token matcher and an optional LLM.

Every extracted field comes from the report text. Nothing is inferred.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose || viper.GetBool("output.verbose"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of groundex.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "groundex %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.groundex/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringP("extractor", "e", "", "extractor to use (pattern, matcher, llm)")
	flags.StringP("format", "f", "", "output format (console, json, yaml, md)")
	flags.Bool("features", false, "include linguistic features (POS tags, noun chunks, entities)")
	flags.String("llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("db", "", "corpus database path")
	flags.Bool("no-cache", false, "disable the page and LLM cache")
	flags.Bool("no-robots", false, "do not consult robots.txt")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	bindFlags()

	rootCmd.AddCommand(versionCmd)
}

// bindFlags maps global flags onto config keys so flags win over env and file
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	for key, flag := range map[string]string{
		"output.verbose":       "verbose",
		"extraction.extractor": "extractor",
		"output.format":        "format",
		"extraction.features":  "features",
		"llm.provider":         "llm-provider",
		"llm.model":            "llm-model",
		"store.path":           "db",
		"no_cache":             "no-cache",
		"no_robots":            "no-robots",
		"http.http_proxy":      "http-proxy",
		"http.https_proxy":     "https-proxy",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".groundex"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// GROUNDEX_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("GROUNDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.DisableStacktrace = true
	config.Sampling = nil
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
