// Package config loads and validates the bridge's YAML configuration:
// server, database, L1 ledger, EVM chain, and bridge policy settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for cmd/bridge.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	L1       L1Config       `yaml:"l1"`
	Evm      EvmConfig      `yaml:"evm"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains the Ledger Store / Queue's Postgres connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// GetConnectionString returns a PostgreSQL connection URL, the DSN form
// accepted by both lib/pq (queue store) and bun's pgdriver (ledger store).
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// L1Config contains the native-coin ledger watcher/client settings.
type L1Config struct {
	WSUrl          string        `yaml:"ws_url"`
	RPCURL         string        `yaml:"rpc_url"`
	HotWallet      string        `yaml:"hot_wallet"`
	ColdWallet     string        `yaml:"cold_wallet"`
	HotWalletSeed  string        `yaml:"hot_wallet_seed"` // env var name holding the hot wallet's signing seed
	NativeSymbol   string        `yaml:"native_symbol"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	HotMinimum     string        `yaml:"hot_minimum"`    // hot-wallet minimum, decimal string
	HotColdRatio   float64       `yaml:"hot_cold_ratio"` // target hot share of total custody, 0<=r<=1
}

// EvmConfig contains the wrapped-token EVM chain watcher/client settings.
type EvmConfig struct {
	RPCURL             string        `yaml:"rpc_url"`
	WSUrl              string        `yaml:"ws_url"`
	ChainID            int64         `yaml:"chain_id"`
	TokenContract      string        `yaml:"token_contract"`
	BridgeSignerKeyEnv string        `yaml:"bridge_signer_key_env"` // env var name holding the mint-receipt signing key
	ConfirmationBlocks int           `yaml:"confirmation_blocks"`
	GasLimit           uint64        `yaml:"gas_limit"`
	MaxGasPrice        string        `yaml:"max_gas_price"`
	PollingInterval    time.Duration `yaml:"polling_interval"`
	StartBlock         int64         `yaml:"start_block"`
	LookbackBlocks     int64         `yaml:"lookback_blocks"`
	ScanSliceBlocks    uint64        `yaml:"scan_slice_blocks"`
}

// BridgeConfig contains bridge-policy (non chain-specific) settings.
type BridgeConfig struct {
	ClaimTTL           time.Duration `yaml:"claim_ttl"`
	BlacklistURL       string        `yaml:"blacklist_url"`
	BlacklistCacheTTL  time.Duration `yaml:"blacklist_cache_ttl"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryDelay         time.Duration `yaml:"retry_delay"`
	ProcessingInterval time.Duration `yaml:"processing_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"output_path"`
}

// Load reads, defaults, env-overrides, and validates configuration from a
// YAML file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&config)
	overrideEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3050
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 15 * time.Second
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = 60 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}

	if config.L1.NativeSymbol == "" {
		config.L1.NativeSymbol = "PAW"
	}
	if config.L1.SweepInterval == 0 {
		config.L1.SweepInterval = 60 * time.Second
	}
	if config.L1.HotMinimum == "" {
		config.L1.HotMinimum = "0"
	}
	if config.L1.HotColdRatio == 0 {
		config.L1.HotColdRatio = 0.2
	}

	if config.Evm.ConfirmationBlocks == 0 {
		config.Evm.ConfirmationBlocks = 5
	}
	if config.Evm.GasLimit == 0 {
		config.Evm.GasLimit = 300000
	}
	if config.Evm.PollingInterval == 0 {
		config.Evm.PollingInterval = 15 * time.Second
	}
	if config.Evm.LookbackBlocks == 0 {
		config.Evm.LookbackBlocks = 1000
	}
	if config.Evm.ScanSliceBlocks == 0 {
		config.Evm.ScanSliceBlocks = 1000
	}

	if config.Bridge.ClaimTTL == 0 {
		config.Bridge.ClaimTTL = 300 * time.Second
	}
	if config.Bridge.BlacklistCacheTTL == 0 {
		config.Bridge.BlacklistCacheTTL = time.Hour
	}
	if config.Bridge.MaxRetries == 0 {
		config.Bridge.MaxRetries = 3
	}
	if config.Bridge.RetryDelay == 0 {
		config.Bridge.RetryDelay = time.Second
	}
	if config.Bridge.ProcessingInterval == 0 {
		config.Bridge.ProcessingInterval = 30 * time.Second
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
	}
	if config.Logging.OutputPath == "" {
		config.Logging.OutputPath = "stdout"
	}
}

func overrideEnv(config *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}

	if v := os.Getenv("DATABASE_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DATABASE_DATABASE"); v != "" {
		config.Database.Database = v
	}
	if v := os.Getenv("DATABASE_SSL_MODE"); v != "" {
		config.Database.SSLMode = v
	}

	if v := os.Getenv("L1_WS_URL"); v != "" {
		config.L1.WSUrl = v
	}
	if v := os.Getenv("L1_RPC_URL"); v != "" {
		config.L1.RPCURL = v
	}
	if v := os.Getenv("L1_HOT_WALLET"); v != "" {
		config.L1.HotWallet = v
	}
	if v := os.Getenv("L1_COLD_WALLET"); v != "" {
		config.L1.ColdWallet = v
	}

	if v := os.Getenv("EVM_RPC_URL"); v != "" {
		config.Evm.RPCURL = v
	}
	if v := os.Getenv("EVM_WS_URL"); v != "" {
		config.Evm.WSUrl = v
	}
	if v := os.Getenv("EVM_TOKEN_CONTRACT"); v != "" {
		config.Evm.TokenContract = v
	}

	if v := os.Getenv("BRIDGE_BLACKLIST_URL"); v != "" {
		config.Bridge.BlacklistURL = v
	}

	if v := os.Getenv("LOGGING_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.L1.RPCURL == "" && config.L1.WSUrl == "" {
		return fmt.Errorf("l1.rpc_url or l1.ws_url is required")
	}
	if config.L1.HotWallet == "" {
		return fmt.Errorf("l1.hot_wallet is required")
	}
	if config.Evm.RPCURL == "" {
		return fmt.Errorf("evm.rpc_url is required")
	}
	if config.Evm.TokenContract == "" {
		return fmt.Errorf("evm.token_contract is required")
	}
	if config.L1.HotColdRatio < 0 || config.L1.HotColdRatio > 1 {
		return fmt.Errorf("l1.hot_cold_ratio must be in [0,1]")
	}
	return nil
}
