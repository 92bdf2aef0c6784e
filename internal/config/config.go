// Package config предоставляет структуры и функцию загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	CacheDriver             string `yaml:"cache_driver" env-default:"memory"` // memory или redis
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	CacheTTL                `yaml:"cache_ttl"`
	ExchangeRates           `yaml:"exchange_rates"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQURL string        `yaml:"rabbitmq_url"`
	Retries     int           `yaml:"retries" env-default:"5"`
	RetryDelay  time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// CacheTTL задаёт время жизни кеша по видам данных: справочник меняется
// редко, курсы валют — по расписанию обновления.
type CacheTTL struct {
	CatalogTTL      time.Duration `yaml:"catalog_ttl" env-default:"12h"`
	RatesTTL        time.Duration `yaml:"rates_ttl" env-default:"30m"`
	SubscriptionTTL time.Duration `yaml:"subscription_ttl" env-default:"1h"`
}

// ExchangeRates структура для внешнего источника курсов валют.
type ExchangeRates struct {
	RatesAPIURL     string        `yaml:"rates_api_url"`
	BaseCurrency    string        `yaml:"base_currency" env-default:"TRY"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" env-default:"5s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"30m"`
}

// Scheduler структура для планировщика уведомлений о списаниях.
type Scheduler struct {
	DaysBefore        int           `yaml:"days_before" env-default:"7"`
	SchedulerInterval time.Duration `yaml:"scheduler_interval" env-default:"24h"`
	SenderInterval    time.Duration `yaml:"sender_interval" env-default:"1m"`
	SenderBatchLimit  int           `yaml:"sender_batch_limit" env-default:"100"`
}

// MustLoad загружает конфиг из файла, путь к которому берётся из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
