package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"barbearia/internal/email"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Broker BrokerConfig
	SMTP   email.SMTPConfig `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type StoreConfig struct {
	// Path of the JSON file holding the appointment collection. Empty
	// selects the non-durable in-memory mode.
	Path string `mapstructure:"path"`
}

type BrokerConfig struct {
	// RedisURL enables event publishing when set.
	RedisURL string `mapstructure:"redis_url"`
}

// LoadConfig reads config.yaml (optional) merged with environment
// variables, then fills the SMTP block from SMTP_* variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("store.path", "data/agendamentos.json")
	viper.SetDefault("broker.redis_url", "")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.SMTP); err != nil {
		return nil, fmt.Errorf("failed to load SMTP config: %w", err)
	}

	return &config, nil
}
