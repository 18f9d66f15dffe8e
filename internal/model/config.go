package model

import "time"

// Config is the complete groundex configuration.
// Loaded from defaults, ~/.groundex/config.yaml, GROUNDEX_* env vars and flags.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Robots       RobotsConfig       `yaml:"robots"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Extraction   ExtractionConfig   `yaml:"extraction"`
	LLM          LLMConfig          `yaml:"llm"`
	Store        StoreConfig        `yaml:"store"`
	Sources      SourcesConfig      `yaml:"sources"`
	Output       OutputConfig       `yaml:"output"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
}

// RobotsConfig controls robots.txt compliance
type RobotsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CacheConfig controls the fetched page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitingConfig controls per-domain request rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ExtractionConfig controls event extraction
type ExtractionConfig struct {
	Extractor    string `yaml:"extractor"`              // pattern, matcher, llm
	LexiconPath  string `yaml:"lexicon_path,omitempty"` // Optional YAML keyword override
	Features     bool   `yaml:"features"`               // Include linguistic features
	MaxTextBytes int    `yaml:"max_text_bytes"`
}

// LLMConfig controls the optional model-assisted extractor
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// StoreConfig controls the SQLite corpus
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SourcesConfig classifies report sources into authority tiers
type SourcesConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty"` // host -> tier, checked first
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `yaml:"pattern"`
	Tier    string `yaml:"tier"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format        string `yaml:"format"` // console, json, yaml, md
	Verbose       bool   `yaml:"verbose"`
	IncludeFooter bool   `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "groundex/0.1 (+https://github.com/ppiankov/groundex)",
			MaxBodyBytes: 2_000_000,
			MaxRetries:   3,
		},
		Robots: RobotsConfig{
			Enabled: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Extraction: ExtractionConfig{
			Extractor:    "pattern",
			MaxTextBytes: 200_000,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
		Store: StoreConfig{
			Path: "groundex.db",
		},
		Sources: SourcesConfig{
			// National accident investigation bodies and regulators
			PrimaryDomains: []string{
				"gov.uk", "ntsb.gov", "uscg.mil", "atsb.gov.au", "tsb.gc.ca",
				"mlit.go.jp", "dmaib.dk", "safetyinvestigation.fi",
				"emsa.europa.eu", "imo.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org",
				"lloydslist.com",
				"gcaptain.com",
				"maritime-executive.com",
				"splash247.com",
				"reuters.com",
				"bbc.co.uk",
				"apnews.com",
			},
			PathPatterns: []PathPattern{
				{Pattern: `(?i)/(maib-reports|marine-accident|investigation-reports?)/`, Tier: "primary"},
			},
		},
		Output: OutputConfig{
			Format:        "console",
			IncludeFooter: true,
		},
	}
}
