package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sandookluxe/storefront/internal/log"
)

type Application struct {
	Env                string `mapstructure:"env"                  json:"env"`
	Host               string `mapstructure:"host"                 json:"host"`
	LogPath            string `mapstructure:"log_path"             json:"log_path"`
	Port               int    `mapstructure:"port"                 json:"port"`
	SessionIdleMinutes int    `mapstructure:"session_idle_minutes" json:"session_idle_minutes"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"password"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"password"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Pricing holds the order total policy. It is the single source for the
// shipping threshold and GST rate, shared by every consumer. The fields are
// pointers so a configured zero is honored; only nil falls back to the
// built-in defaults.
type Pricing struct {
	FreeShippingThreshold *float64 `mapstructure:"free_shipping_threshold" json:"free_shipping_threshold"`
	FlatShippingFee       *float64 `mapstructure:"flat_shipping_fee"       json:"flat_shipping_fee"`
	TaxRate               *float64 `mapstructure:"tax_rate"                json:"tax_rate"`
}

// Catalog selects the product directory implementation: "embedded", "http" or
// "postgres".
type Catalog struct {
	Driver  string `mapstructure:"driver"   json:"driver"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// CartStorage selects the cart persistence implementation: "redis", "file" or
// "memory".
type CartStorage struct {
	Driver string `mapstructure:"driver" json:"driver"`
	Dir    string `mapstructure:"dir"    json:"dir"`
}

type Payment struct {
	CardGatewayURL string `mapstructure:"card_gateway_url" json:"card_gateway_url"`
	UPIGatewayURL  string `mapstructure:"upi_gateway_url"  json:"upi_gateway_url"`
	Currency       string `mapstructure:"currency"         json:"currency"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"  json:"timeout_seconds"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Pricing     `mapstructure:"pricing"     json:"pricing"`
	Catalog     `mapstructure:"catalog"     json:"catalog"`
	CartStorage `mapstructure:"cart_storage" json:"cart_storage"`
	Payment     `mapstructure:"payment"     json:"payment"`
}

var (
	once   sync.Once
	config *Config
)

func InitConfig(c context.Context, filename string) *Config {
	cfg := Config{}
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		viper.SetConfigName(filename)
		viper.AddConfigPath("./env")
		viper.SetConfigType("yaml")
		viper.AutomaticEnv()

		viper.SetDefault("application.env", "development")
		viper.SetDefault("application.log_path", "/var/log/storefront.log")
		viper.SetDefault("application.session_idle_minutes", 30)
		viper.SetDefault("pricing.free_shipping_threshold", 25000)
		viper.SetDefault("pricing.flat_shipping_fee", 500)
		viper.SetDefault("pricing.tax_rate", 0.18)
		viper.SetDefault("catalog.driver", "embedded")
		viper.SetDefault("cart_storage.driver", "redis")
		viper.SetDefault("payment.currency", "INR")
		viper.SetDefault("payment.timeout_seconds", 30)

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := viper.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		err = viper.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}
