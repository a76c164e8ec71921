package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sakashimaa/pos-console/pkg/utils"
)

type Config struct {
	Env          string       `yaml:"env" env:"ENV" env-default:"local"`
	Log          Log          `yaml:"log"`
	HTTP         HTTP         `yaml:"http"`
	Postgres     PG           `yaml:"postgres"`
	Redis        Redis        `yaml:"redis"`
	Kafka        Kafka        `yaml:"kafka"`
	Auth         Auth         `yaml:"auth"`
	Limiter      Limiter      `yaml:"limiter"`
	Cart         Cart         `yaml:"cart"`
	Catalog      Catalog      `yaml:"catalog"`
	Workflow     Workflow     `yaml:"workflow"`
	Notification Notification `yaml:"notification"`
	SMTP         SMTP         `yaml:"smtp"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers           []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	OrderTopic        string   `yaml:"order_topic" env-default:"order_events"`
	NotificationTopic string   `yaml:"notification_topic" env-default:"notification_events"`
	GroupID           string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"notification-service-group"`
}

type Auth struct {
	AccessSecret string `yaml:"access_secret" env:"ACCESS_SECRET"`
}

type Limiter struct {
	RPC int           `yaml:"rpc" env-default:"10"`
	TTL time.Duration `yaml:"ttl" env-default:"1m"`
}

type Cart struct {
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"12h"`
}

type Catalog struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

type Workflow struct {
	StrictTerminal bool          `yaml:"strict_terminal" env:"WORKFLOW_STRICT_TERMINAL" env-default:"false"`
	NotifyTimeout  time.Duration `yaml:"notify_timeout" env-default:"5s"`
}

type Notification struct {
	ShopName string `yaml:"shop_name" env-default:"Fresh Food Store"`
	ShopLink string `yaml:"shop_link" env-default:"http://localhost:3000"`
	ReplyTo  string `yaml:"reply_to" env:"NOTIFICATION_REPLY_TO"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}

func (c *Config) LoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level: c.Log.Level,
		Env:   c.Env,
	}
}
