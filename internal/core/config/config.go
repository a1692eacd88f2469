package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// Promo catalog sources accepted by PROMO_CATALOG.
const (
	PromoCatalogRemote = "remote"
	PromoCatalogStatic = "static"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the session and order store configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Marketplace holds the marketplace backend API configuration.
	Marketplace MarketplaceConfig `mapstructure:",squash"`

	// Promo holds the promo catalog configuration.
	Promo PromoConfig `mapstructure:",squash"`
}

// RedisConfig holds the Redis connection and expiry settings.
type RedisConfig struct {
	// URL is the Redis connection URL (redis://[:password@]host[:port][/database]).
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// CartSessionTTL is how long an idle cart session survives, in seconds.
	CartSessionTTL int `mapstructure:"CART_SESSION_TTL" default:"86400"`
}

// MarketplaceConfig holds the credentials for the marketplace backend.
type MarketplaceConfig struct {
	// URL is the base URL of the marketplace REST API.
	URL string `mapstructure:"MARKETPLACE_API_URL" required:"true"`
	// APIKey is the bearer token sent with every request.
	APIKey string `mapstructure:"MARKETPLACE_API_KEY" required:"true"`
	// Timeout is the per-request timeout, in seconds.
	Timeout int `mapstructure:"MARKETPLACE_TIMEOUT" default:"10"`
}

// PromoConfig selects where promo codes are looked up.
type PromoConfig struct {
	// Catalog is either "remote" (marketplace API, cached in Redis) or "static".
	Catalog string `mapstructure:"PROMO_CATALOG" default:"remote"`
	// CacheTTL is how long a remote promo lookup stays cached, in seconds.
	CacheTTL int `mapstructure:"PROMO_CACHE_TTL" default:"300"`
}

// SessionTTL returns the cart session expiry as a duration.
func (c RedisConfig) SessionTTL() time.Duration {
	return time.Duration(c.CartSessionTTL) * time.Second
}

// RequestTimeout returns the marketplace request timeout as a duration.
func (c MarketplaceConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// CacheDuration returns the promo cache expiry as a duration.
func (c PromoConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateValues(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", key, err)
		}

		if defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// validateValues rejects values that parse but make no sense.
func validateValues(config *AppConfig) error {
	switch config.Promo.Catalog {
	case PromoCatalogRemote, PromoCatalogStatic:
	default:
		return fmt.Errorf("invalid configuration PROMO_CATALOG: %q", config.Promo.Catalog)
	}

	if config.Marketplace.Timeout <= 0 {
		return fmt.Errorf("invalid configuration MARKETPLACE_TIMEOUT: %d", config.Marketplace.Timeout)
	}

	if config.Redis.CartSessionTTL < 0 {
		return fmt.Errorf("invalid configuration CART_SESSION_TTL: %d", config.Redis.CartSessionTTL)
	}

	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
