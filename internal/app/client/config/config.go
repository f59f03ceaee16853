package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Хранилища объектов
const (
	StoreHTTP     = "http"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Хранилища сессии
const (
	SessionFile   = "file"
	SessionSQLite = "sqlite"
)

// Способы загрузки файлов
const (
	UploadHTTP = "http"
	UploadS3   = "s3"
)

const (
	defaultLogLevel      = "info"
	defaultEnv           = EnvLocal
	defaultConfigDir     = ".vidshare"
	defaultStoreBackend  = StoreHTTP
	defaultStoreTimeout  = 10 * time.Second
	defaultListLimit     = 1000
	defaultUploadTimeout = 30 * time.Second
	defaultMigrations    = "migrations"
	defaultDynamoTable   = "vidshare-objects"
	defaultAWSRegion     = "us-east-1"
)

type Config struct {
	Env       string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	ConfigDir string `mapstructure:"config_dir"`

	Store   StoreConfig   `mapstructure:",squash"`
	Session SessionConfig `mapstructure:",squash"`
	Upload  UploadConfig  `mapstructure:",squash"`

	HashPasswords bool `mapstructure:"hash_passwords"`
}

// StoreConfig - выбор и параметры хранилища объектов
type StoreConfig struct {
	Backend   string        `mapstructure:"store_backend"`
	URL       string        `mapstructure:"store_url"`
	APIKey    string        `mapstructure:"store_api_key"`
	RPS       float64       `mapstructure:"store_rps"`
	Timeout   time.Duration `mapstructure:"store_timeout"`
	ListLimit int           `mapstructure:"list_limit"`

	SQLitePath     string `mapstructure:"sqlite_path"`
	DatabaseURI    string `mapstructure:"database_uri"`
	MigrationsPath string `mapstructure:"migrations_path"`

	DynamoTable string    `mapstructure:"dynamodb_table"`
	AWS         AWSConfig `mapstructure:",squash"`
}

// AWSConfig - общие параметры AWS для DynamoDB и S3
type AWSConfig struct {
	Region          string `mapstructure:"aws_region"`
	Endpoint        string `mapstructure:"aws_endpoint"`
	AccessKeyID     string `mapstructure:"aws_access_key_id"`
	SecretAccessKey string `mapstructure:"aws_secret_access_key"`
}

// SessionConfig - где хранится сессия между запусками.
// Dir и DBPath вычисляются из ConfigDir.
type SessionConfig struct {
	Backend string `mapstructure:"session_backend"`
	Dir     string `mapstructure:"-"`
	DBPath  string `mapstructure:"-"`
}

// UploadConfig - куда передаются видеофайлы
type UploadConfig struct {
	Backend         string        `mapstructure:"upload_backend"`
	URL             string        `mapstructure:"upload_url"`
	APIKey          string        `mapstructure:"upload_api_key"`
	Timeout         time.Duration `mapstructure:"upload_timeout"`
	S3Bucket        string        `mapstructure:"s3_bucket"`
	S3PublicBaseURL string        `mapstructure:"s3_public_base_url"`
}

// envKeys - ключи без значений по умолчанию, читаемые из окружения
var envKeys = []string{
	"store_url",
	"store_api_key",
	"sqlite_path",
	"database_uri",
	"aws_endpoint",
	"aws_access_key_id",
	"aws_secret_access_key",
	"upload_url",
	"upload_api_key",
	"s3_bucket",
	"s3_public_base_url",
}

// MustLoad загружает конфигурацию клиента. configFile - необязательный YAML-файл.
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию из .env, окружения и файла configFile
func Load(configFile string) (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	// Загружаем .env файл если существует
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("ошибка привязки переменной %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("STORE_BACKEND", defaultStoreBackend)
	v.SetDefault("STORE_TIMEOUT", defaultStoreTimeout)
	v.SetDefault("STORE_RPS", 0.0)
	v.SetDefault("LIST_LIMIT", defaultListLimit)
	v.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	v.SetDefault("DYNAMODB_TABLE", defaultDynamoTable)
	v.SetDefault("AWS_REGION", defaultAWSRegion)
	v.SetDefault("SESSION_BACKEND", SessionFile)
	v.SetDefault("UPLOAD_BACKEND", UploadHTTP)
	v.SetDefault("UPLOAD_TIMEOUT", defaultUploadTimeout)
	v.SetDefault("HASH_PASSWORDS", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	if cfg.ConfigDir == defaultConfigDir {
		cfg.ConfigDir = filepath.Join(homeDir, cfg.ConfigDir)
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.ConfigDir, "objects.db")
	}

	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	cfg.Session.Backend = strings.ToLower(cfg.Session.Backend)
	cfg.Session.Dir = cfg.ConfigDir
	cfg.Session.DBPath = filepath.Join(cfg.ConfigDir, "client.db")
	cfg.Upload.Backend = strings.ToLower(cfg.Upload.Backend)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreHTTP:
		if c.Store.URL == "" {
			return fmt.Errorf("store_url не может быть пустым для хранилища http")
		}
	case StorePostgres:
		if c.Store.DatabaseURI == "" {
			return fmt.Errorf("database_uri не может быть пустым для хранилища postgres")
		}
	case StoreDynamoDB:
		if c.Store.DynamoTable == "" {
			return fmt.Errorf("dynamodb_table не может быть пустым")
		}
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("неизвестное хранилище объектов %q", c.Store.Backend)
	}

	switch c.Session.Backend {
	case SessionFile, SessionSQLite:
	default:
		return fmt.Errorf("неизвестное хранилище сессии %q", c.Session.Backend)
	}

	switch c.Upload.Backend {
	case UploadHTTP, UploadS3:
	default:
		return fmt.Errorf("неизвестный способ загрузки %q", c.Upload.Backend)
	}

	if c.Store.ListLimit < 0 {
		return fmt.Errorf("list_limit не может быть отрицательным")
	}

	return nil
}

// UploadConfigured сообщает, настроена ли конечная точка загрузки
func (c *Config) UploadConfigured() bool {
	if c.Upload.Backend == UploadS3 {
		return c.Upload.S3Bucket != ""
	}
	return c.Upload.URL != ""
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
