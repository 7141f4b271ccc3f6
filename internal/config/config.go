package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server      ServerConfig   `envPrefix:"SERVER_"`
	Auth        AuthConfig     `envPrefix:"AUTH_"`
	Snapshot    SnapshotConfig `envPrefix:"SNAPSHOT_"`
	AMQP        AMQPConfig     `envPrefix:"AMQP_"`
	Environment string         `env:"ENVIRONMENT" envDefault:"development"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8083"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:"dromedarycamel"`
}

type SnapshotConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"data/snapshots"`
}

type AMQPConfig struct {
	URL      string `env:"URL"`
	Exchange string `env:"EXCHANGE" envDefault:"streams.events"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
