package config

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Lisk token pair swapped by the planner. Not user-configurable.
const (
	TokenUSDT  = "0x05d032ac25d322df992303dca074ee7392c117b9"
	TokenUSDT0 = "0x43f2376d5d03553ae72f4a8093bbe9de4336eb08"
)

const (
	// DefaultRPCURL is the public Lisk RPC endpoint.
	DefaultRPCURL = "https://rpc.api.lisk.com"
	// DefaultSugarURL is the local Sugar quoting service.
	DefaultSugarURL = "http://127.0.0.1:8765"
	// DefaultSlippage is used when neither the request nor the chain settings carry one.
	DefaultSlippage = 0.003
	// DefaultDecimals is assumed for a token whose decimals cannot be resolved.
	DefaultDecimals = 6
)

// Environment overrides.
const (
	EnvRPCURL     = "SUGAR_RPC_URI_1135"
	EnvSugarURL   = "SUGAR_API_URL"
	EnvListenAddr = "LISTEN_ADDR"
	EnvLogLevel   = "LOG_LEVEL"
	EnvSlippage   = "SUGAR_DEFAULT_SLIPPAGE"
)

// Config holds application configuration loaded from file and environment.
type Config struct {
	RPCURL            string        `yaml:"rpc_url"`
	SugarURL          string        `yaml:"sugar_url"`
	ListenAddr        string        `yaml:"listen_addr"`
	LogLevel          string        `yaml:"log_level"`
	DefaultSlippage   float64       `yaml:"default_slippage"`
	GraceTimeout      time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	CallTimeout       time.Duration `yaml:"call_timeout"`

	TokenIn  string `yaml:"-"`
	TokenOut string `yaml:"-"`
}

// Load reads the config from a YAML file path and applies environment
// overrides and defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer func() { _ = f.Close() }()

			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return Config{}, errors.Wrap(err, "decoder.Decode")
			}
		case !os.IsNotExist(err):
			return Config{}, errors.Wrap(err, "os.Open")
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv(EnvSugarURL); v != "" {
		cfg.SugarURL = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvSlippage); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultSlippage = f
		}
	}
}

func applyDefaults(cfg *Config) {
	// Fallbacks
	const defaultTimeout = 5 * time.Second
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}
	if cfg.SugarURL == "" {
		cfg.SugarURL = DefaultSugarURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":1337"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DefaultSlippage <= 0 || cfg.DefaultSlippage >= 1 {
		cfg.DefaultSlippage = DefaultSlippage
	}
	if cfg.GraceTimeout == 0 {
		cfg.GraceTimeout = defaultTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 3 * defaultTimeout
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaultTimeout
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = defaultTimeout
	}

	cfg.TokenIn = TokenUSDT
	cfg.TokenOut = TokenUSDT0
}
