package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	CORSOrigins []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"*"`
}

type DBConfig struct {
	URL      string `yaml:"url" env:"DB_URL" env-required:"true"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"20"`
}

type RabbitMQConfig struct {
	// пустой URL отключает аудит через брокер
	URL string `yaml:"url" env:"RABBITMQ_URL"`
}

type AssistConfig struct {
	APIKey  string        `yaml:"api_key" env:"ASSIST_API_KEY"`
	Model   string        `yaml:"model" env:"ASSIST_MODEL" env-default:"gemini-2.0-flash-001"`
	BaseURL string        `yaml:"base_url" env:"ASSIST_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `yaml:"timeout" env:"ASSIST_TIMEOUT" env-default:"30s"`
}

type Config struct {
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Assist   AssistConfig   `yaml:"assist"`
}

// Load читает YAML-файл с переопределением из env; без файла - только env
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		err := cleanenv.ReadEnv(&cfg)
		return cfg, err
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			cfg = Config{}
			err := cleanenv.ReadEnv(&cfg)
			return cfg, err
		}
		return cfg, err
	}
	return cfg, nil
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}
	return cfg
}
