package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stacklet/stacklet-service/pkg/logger"
	"github.com/stacklet/stacklet-service/pkg/openlibrary"
	"github.com/stacklet/stacklet-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"3001"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ"`
	WriteTimeout time.Duration
}

type Auth struct {
	APIKey string `yaml:"apiKey" envconfig:"API_KEY" default:"stacklet-api-key-2024"`
}

type Config struct {
	Server      HTTPServer         `yaml:"server"`
	Auth        Auth               `yaml:"auth"`
	Database    postgres.DB        `yaml:"db"`
	OpenLibrary openlibrary.Config `yaml:"openlibrary"`
	Log         logger.Log         `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
