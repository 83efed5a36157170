package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Shop    ShopConfig    `mapstructure:"shop"`
	Storage StorageConfig `mapstructure:"storage"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Log     LogConfig     `mapstructure:"log"`
}

type ShopConfig struct {
	Name     string `mapstructure:"name"`
	Currency string `mapstructure:"currency"`
}

// StorageConfig selects where each kind of record lives. Carts and Bills
// default to Backend when left empty.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Carts      string `mapstructure:"carts"`
	Bills      string `mapstructure:"bills"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CartTTL  time.Duration `mapstructure:"cart_ttl"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shop.name", "Online Shop")
	v.SetDefault("shop.currency", "BDT")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.sqlite_path", "data/shop.db")
	v.SetDefault("storage.carts", "")
	v.SetDefault("storage.bills", "")

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.database", "shop")
	v.SetDefault("mysql.max_idle_conns", 2)
	v.SetDefault("mysql.max_open_conns", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.cart_ttl", 0)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "shop")
	v.SetDefault("mongodb.collection", "bills")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"shop.log"})
}

// Load reads the YAML file at configPath on top of the built-in defaults.
// A missing file is not an error. Every key can be overridden from the
// environment as SHOP_<SECTION>_<KEY>, e.g. SHOP_STORAGE_BACKEND.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("shop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadDotEnv copies KEY=VALUE pairs from the file at path into the process
// environment so they can override config keys. Variables that are already
// set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Validate rejects backend names the repository layer does not know.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMySQL, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}
	switch c.Storage.Carts {
	case "", BackendRedis:
	default:
		return fmt.Errorf("invalid storage.carts %q", c.Storage.Carts)
	}
	switch c.Storage.Bills {
	case "", BackendMongo:
	default:
		return fmt.Errorf("invalid storage.bills %q", c.Storage.Bills)
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}
