package configloader

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	Pprof        bool   `yaml:"pprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// IdentityConfig holds the candidate names for generated account identities.
type IdentityConfig struct {
	Names []string `yaml:"names"`
}

// DataConfig points at the token lists and the seed wallet file.
type DataConfig struct {
	TokenDir   string `yaml:"tokenDir"`
	WalletFile string `yaml:"walletFile"`
}

// PollerConfig holds balance poller settings.
type PollerConfig struct {
	Enabled               bool    `yaml:"enabled"`
	IntervalSeconds       int     `yaml:"intervalSeconds"`
	MaxConcurrentRequests int     `yaml:"maxConcurrentRequests"`
	MaxItemsPerBatch      int     `yaml:"maxItemsPerBatch"`
	RateLimitPerSecond    float64 `yaml:"rateLimitPerSecond"`
	BurstLimit            int     `yaml:"burstLimit"`
}

// ActivityConfig holds transfer history settings.
type ActivityConfig struct {
	LookbackBlocks  uint64 `yaml:"lookbackBlocks"`
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes"`
	MaxItems        int    `yaml:"maxItems"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	MaxTokensPerBatchRequest int   `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int   `yaml:"cacheTTLMinutes"`
	RequestTimeoutMillis     int64 `yaml:"requestTimeoutMillis"`
	RefreshIntervalMinutes   int   `yaml:"refreshIntervalMinutes"`
}

// RedisConfig holds the optional snapshot sink settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines    int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds    int `yaml:"rpc_call_timeout_seconds"`
	ConnectionTimeoutSeconds int `yaml:"connection_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server                    ServerConfig            `yaml:"server"`
	Logging                   LoggingConfig           `yaml:"logging"`
	Identity                  IdentityConfig          `yaml:"identity"`
	Data                      DataConfig              `yaml:"data"`
	TrackedNetworkIdentifiers []string                `yaml:"trackedNetworks"`
	Poller                    PollerConfig            `yaml:"poller"`
	Activity                  ActivityConfig          `yaml:"activity"`
	DEXScreener               DEXScreenerConfig       `yaml:"dexScreener"`
	TokenPriceSvc             TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Redis                     RedisConfig             `yaml:"redis"`
	Performance               PerformanceConfig       `yaml:"performance"`
}

// Load reads the YAML configuration file at path, expanding ${VAR} references
// from the environment, and fills in defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes a YAML document and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	validate(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Data.TokenDir == "" {
		cfg.Data.TokenDir = "data/tokens"
		logrus.Infof("Data.TokenDir not set, defaulting to %s", cfg.Data.TokenDir)
	}
	if cfg.Data.WalletFile == "" {
		cfg.Data.WalletFile = "data/wallets.txt"
		logrus.Infof("Data.WalletFile not set, defaulting to %s", cfg.Data.WalletFile)
	}

	if cfg.Poller.IntervalSeconds <= 0 {
		cfg.Poller.IntervalSeconds = 60
		logrus.Infof("Poller.IntervalSeconds not set, defaulting to %d", cfg.Poller.IntervalSeconds)
	}
	if cfg.Poller.MaxConcurrentRequests <= 0 {
		cfg.Poller.MaxConcurrentRequests = 5
	}
	if cfg.Poller.MaxItemsPerBatch <= 0 {
		cfg.Poller.MaxItemsPerBatch = 100
	}
	if cfg.Poller.RateLimitPerSecond <= 0 {
		cfg.Poller.RateLimitPerSecond = 10
	}
	if cfg.Poller.BurstLimit <= 0 {
		cfg.Poller.BurstLimit = 5
	}

	if cfg.Activity.LookbackBlocks == 0 {
		cfg.Activity.LookbackBlocks = 5000
	}
	if cfg.Activity.CacheTTLMinutes <= 0 {
		cfg.Activity.CacheTTLMinutes = 10
	}
	if cfg.Activity.MaxItems <= 0 {
		cfg.Activity.MaxItems = 200
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis == 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
		logrus.Infof("DEXScreener.RequestTimeoutMillis not set, defaulting to %d ms", cfg.DEXScreener.RequestTimeoutMillis)
	}

	if cfg.TokenPriceSvc.MaxTokensPerBatchRequest == 0 {
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest = 30 // DEXScreener limit
		logrus.Infof("MaxTokensPerBatchRequest for TokenPriceSvc not set, defaulting to %d", cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	}
	if cfg.TokenPriceSvc.CacheTTLMinutes == 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 60
		logrus.Infof("CacheTTLMinutes for TokenPriceSvc not set, defaulting to %d minutes", cfg.TokenPriceSvc.CacheTTLMinutes)
	}
	if cfg.TokenPriceSvc.RequestTimeoutMillis == 0 {
		cfg.TokenPriceSvc.RequestTimeoutMillis = cfg.DEXScreener.RequestTimeoutMillis
		logrus.Infof("TokenPriceSvc.RequestTimeoutMillis not set, defaulting to DEXScreener.RequestTimeoutMillis: %d ms", cfg.TokenPriceSvc.RequestTimeoutMillis)
	}
	if cfg.TokenPriceSvc.RefreshIntervalMinutes <= 0 {
		cfg.TokenPriceSvc.RefreshIntervalMinutes = 15
	}

	if cfg.Redis.Key == "" {
		cfg.Redis.Key = "wallet_state:directory"
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
		logrus.Infof("Redis.Addr not set, defaulting to %s", cfg.Redis.Addr)
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.ConnectionTimeoutSeconds <= 0 {
		cfg.Performance.ConnectionTimeoutSeconds = 10
	}
}

func validate(cfg *Config) {
	if len(cfg.TrackedNetworkIdentifiers) == 0 {
		logrus.Warn("No trackedNetworks configured. Every network with a token file will be polled.")
	}
	for _, name := range cfg.Identity.Names {
		if name == "" {
			logrus.Warn("Identity.Names contains an empty name.")
		}
	}
}

// PollInterval returns the poller interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poller.IntervalSeconds) * time.Second
}

// RPCCallTimeout returns the per-batch RPC timeout.
func (c *Config) RPCCallTimeout() time.Duration {
	return time.Duration(c.Performance.RPCCallTimeoutSeconds) * time.Second
}

// ConnectionTimeout returns the RPC dial timeout.
func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.Performance.ConnectionTimeoutSeconds) * time.Second
}

// PriceCacheTTL returns how long fetched prices stay valid.
func (c *Config) PriceCacheTTL() time.Duration {
	return time.Duration(c.TokenPriceSvc.CacheTTLMinutes) * time.Minute
}

// ActivityCacheTTL returns how long transfer history stays cached.
func (c *Config) ActivityCacheTTL() time.Duration {
	return time.Duration(c.Activity.CacheTTLMinutes) * time.Minute
}
