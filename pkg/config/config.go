package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/service"
)

const Prefix = "storefront"

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageMySQL  = "mysql"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":8081"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:3000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ReadAttempts   uint          `envconfig:"READ_ATTEMPTS" default:"3"`
	RetryInterval  time.Duration `envconfig:"RETRY_INTERVAL" default:"200ms"`
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"15s"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	StoragePath   string `envconfig:"STORAGE_PATH" default:"storefront.json"`
	MySQLDSN      string `envconfig:"MYSQL_DSN"`

	// DemoOrders lets the admin console show fabricated orders when the
	// user records contain none.
	DemoOrders bool `envconfig:"DEMO_ORDERS" default:"false"`

	FreeShippingThreshold float64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"1999"`
	ShippingFee           float64 `envconfig:"SHIPPING_FEE" default:"99"`
	DiscountThreshold     float64 `envconfig:"DISCOUNT_THRESHOLD" default:"2999"`
	FlatDiscount          float64 `envconfig:"FLAT_DISCOUNT" default:"200"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageFile:
	case StorageMySQL:
		if c.MySQLDSN == "" {
			return errors.New("STOREFRONT_MYSQL_DSN is required for the mysql storage driver")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.ReadAttempts == 0 {
		return errors.New("STOREFRONT_READ_ATTEMPTS must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("STOREFRONT_REQUEST_TIMEOUT must be positive")
	}
	if c.HealthInterval <= 0 {
		return errors.New("STOREFRONT_HEALTH_INTERVAL must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "STOREFRONT_LOG_LEVEL")
	}
	return nil
}

func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) Pricing() service.PricingPolicy {
	return service.PricingPolicy{
		FreeShippingThreshold: c.FreeShippingThreshold,
		ShippingFee:           c.ShippingFee,
		DiscountThreshold:     c.DiscountThreshold,
		FlatDiscount:          c.FlatDiscount,
	}
}
