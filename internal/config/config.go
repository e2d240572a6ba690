package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/lugondev/solmint/internal/common"
)

// Config holds all configuration for the application
type Config struct {
	Solana  SolanaConfig  `mapstructure:"solana"`
	Deposit DepositConfig `mapstructure:"deposit"`
	Token   TokenConfig   `mapstructure:"token"`
	Tools   ToolsConfig   `mapstructure:"tools"`
	State   StateConfig   `mapstructure:"state"`
	Log     LogConfig     `mapstructure:"log"`
}

// SolanaConfig holds Solana-specific configuration
type SolanaConfig struct {
	RPC        string `mapstructure:"rpc"`
	Network    string `mapstructure:"network"`
	Timeout    int    `mapstructure:"timeout"` // in seconds, 0 disables
	Commitment string `mapstructure:"commitment"`
}

// DepositConfig controls the funding wait.
type DepositConfig struct {
	MinSOL       string        `mapstructure:"min_sol"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"` // 0 waits forever
}

// TokenConfig controls minting.
type TokenConfig struct {
	MintAmount uint64 `mapstructure:"mint_amount"`
}

// ToolsConfig names the external utilities.
type ToolsConfig struct {
	Keygen      string `mapstructure:"keygen"`
	SPLToken    string `mapstructure:"spl_token"`
	KeypairPath string `mapstructure:"keypair_path"`
}

// StateConfig locates the workflow state file.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or text
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:        "",
			Network:    "mainnet",
			Timeout:    30,
			Commitment: string(rpc.CommitmentConfirmed),
		},
		Deposit: DepositConfig{
			MinSOL:       "0.002",
			PollInterval: time.Second,
		},
		Token: TokenConfig{
			MintAmount: 1_000_000,
		},
		Tools: ToolsConfig{
			Keygen:   "solana-keygen",
			SPLToken: "spl-token",
		},
		State: StateConfig{
			Path: "state.json",
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "text",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load loads configuration from file and environment using the global viper
// instance, so flags bound with viper.BindPFlag take effect.
func Load(configPath string) (*Config, error) {
	return LoadWith(viper.GetViper(), configPath)
}

// LoadWith loads configuration into cfg using v.
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".solmint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	// Environment variables
	v.SetEnvPrefix("SOLMINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("solana.rpc", cfg.Solana.RPC)
	v.SetDefault("solana.network", cfg.Solana.Network)
	v.SetDefault("solana.timeout", cfg.Solana.Timeout)
	v.SetDefault("solana.commitment", cfg.Solana.Commitment)
	v.SetDefault("deposit.min_sol", cfg.Deposit.MinSOL)
	v.SetDefault("deposit.poll_interval", cfg.Deposit.PollInterval)
	v.SetDefault("deposit.timeout", cfg.Deposit.Timeout)
	v.SetDefault("token.mint_amount", cfg.Token.MintAmount)
	v.SetDefault("tools.keygen", cfg.Tools.Keygen)
	v.SetDefault("tools.spl_token", cfg.Tools.SPLToken)
	v.SetDefault("tools.keypair_path", cfg.Tools.KeypairPath)
	v.SetDefault("state.path", cfg.State.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age", cfg.Log.MaxAge)
}

// Validate checks values that would otherwise fail deep inside the wizard.
func (c *Config) Validate() error {
	if _, err := c.Deposit.MinLamports(); err != nil {
		return fmt.Errorf("invalid deposit.min_sol %q: %w", c.Deposit.MinSOL, err)
	}
	if c.Deposit.PollInterval <= 0 {
		return fmt.Errorf("deposit.poll_interval must be positive, got %s", c.Deposit.PollInterval)
	}
	if c.Deposit.Timeout < 0 {
		return fmt.Errorf("deposit.timeout must not be negative, got %s", c.Deposit.Timeout)
	}
	switch rpc.CommitmentType(c.Solana.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("unknown solana.commitment %q", c.Solana.Commitment)
	}
	if c.Token.MintAmount == 0 {
		return fmt.Errorf("token.mint_amount must be positive")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path must not be empty")
	}
	return nil
}

// MinLamports converts the configured SOL threshold to lamports without
// going through floating point.
func (d *DepositConfig) MinLamports() (uint64, error) {
	return common.SOLToLamports(d.MinSOL)
}

// RequestTimeout returns the per-request RPC timeout.
func (c *SolanaConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetRPCEndpoint returns the RPC endpoint for the configured network
func (c *SolanaConfig) GetRPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}

	switch c.Network {
	case "devnet":
		return "https://api.devnet.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.mainnet-beta.solana.com"
	}
}

// Options converts the log section for common.NewLogger.
func (l LogConfig) Options() common.LogOptions {
	return common.LogOptions{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
	}
}
