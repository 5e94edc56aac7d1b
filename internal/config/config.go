package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Config is read from the environment by the cmd entry points only.
type Config struct {
	StoreBackend      string `env:"STORE_BACKEND,default=memory" validate:"oneof=memory badger dynamodb"`
	BadgerPath        string `env:"BADGER_PATH" validate:"required_if=StoreBackend badger"`
	MessageTable      string `env:"MESSAGE_TABLE"`
	MessageTableParam string `env:"MESSAGE_TABLE_PARAM"`
	LogLevel          string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Host              string `env:"HOST,default=localhost"`
	Port              int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
}

var validate = validator.New()

// Load decodes and validates the process environment.
func Load() (Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}
	return Parse(es)
}

// Parse decodes and validates an explicit set of variables.
func Parse(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.StoreBackend == BackendDynamoDB && c.MessageTable == "" && c.MessageTableParam == "" {
		return errors.New("config: MESSAGE_TABLE or MESSAGE_TABLE_PARAM is required for the dynamodb backend")
	}
	return nil
}

// Address is the host:port the HTTP server binds to.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
