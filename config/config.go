package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Server      ServerConfig      `mapstructure:"server"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Venues      []VenueConfig     `mapstructure:"venues"`
}

// FeedConfig configures the upstream market data WebSocket.
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Topics  []string      `mapstructure:"topics"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AggregationConfig tunes the aggregation and conversion pipeline.
type AggregationConfig struct {
	VWAPWindow      time.Duration `mapstructure:"vwap_window"`      // trailing mean window for last prices
	MaxProxyHops    int           `mapstructure:"max_proxy_hops"`   // conversion proxy search depth
	PublishInterval time.Duration `mapstructure:"publish_interval"` // min interval between snapshot publishes per market
	DepthRepublish  time.Duration `mapstructure:"depth_republish"`  // unchanged depth republish threshold
	TradeMarkerTTL  time.Duration `mapstructure:"trade_marker_ttl"` // trade dedup marker lifetime
	SnapshotChannel string        `mapstructure:"snapshot_channel"` // pub/sub channel for snapshots
	DepthChannel    string        `mapstructure:"depth_channel"`    // pub/sub channel for depths
	TradeChannel    string        `mapstructure:"trade_channel"`    // pub/sub channel for trades
	RetentionPeriod time.Duration `mapstructure:"retention_period"` // stored snapshot retention
	RetentionSweep  time.Duration `mapstructure:"retention_sweep"`  // interval between retention sweeps
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig configures the cache and pub/sub connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// VenueConfig configures one polled venue integration.
type VenueConfig struct {
	ID                string        `mapstructure:"id"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	// TODO: env path
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	setDefaults(v)

	// Support environment variables with dot notation (e.g., FEED_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aggregation.vwap_window", 15*time.Minute)
	v.SetDefault("aggregation.max_proxy_hops", 2)
	v.SetDefault("aggregation.publish_interval", 30*time.Second)
	v.SetDefault("aggregation.depth_republish", 60*time.Second)
	v.SetDefault("aggregation.trade_marker_ttl", 24*time.Hour)
	v.SetDefault("aggregation.snapshot_channel", "marketstem.tickers")
	v.SetDefault("aggregation.depth_channel", "marketstem.depths")
	v.SetDefault("aggregation.trade_channel", "marketstem.trades")
	v.SetDefault("aggregation.retention_period", 30*24*time.Hour)
	v.SetDefault("aggregation.retention_sweep", time.Hour)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
}
