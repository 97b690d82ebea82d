package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/Astemirdum/book-ratings/pkg/kafka"
	"github.com/Astemirdum/book-ratings/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"RATING_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

// Breaker guards the DynamoDB store, disabled while RecordLength is 0.
type Breaker struct {
	RecordLength     int           `envconfig:"STORE_CB_RECORD_LENGTH"`
	Timeout          time.Duration `envconfig:"STORE_CB_TIMEOUT" default:"10s"`
	Percentile       float64       `envconfig:"STORE_CB_PERCENTILE" default:"0.5"`
	RecoveryRequests int           `envconfig:"STORE_CB_RECOVERY" default:"5"`
}

func (b Breaker) Enabled() bool {
	return b.RecordLength > 0
}

type Config struct {
	Server  HTTPServer `yaml:"server"`
	Dynamo  dynamo.Config
	Breaker Breaker
	Kafka   kafka.Config
	Log     logger.Log `yaml:"log"`
}

const defaultWriteTimeout = 15 * time.Second

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once per process.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		c, err := Load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = c
		printConfig(cfg)
	})

	return cfg
}

func Load(ops ...Option) (*Config, error) {
	var config Config
	for _, op := range ops {
		op(&config)
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = defaultWriteTimeout
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}
	if c.Dynamo.Enabled() && c.Dynamo.Timeout <= 0 {
		return errors.New("DYNAMODB_TIMEOUT must be positive")
	}
	if c.Breaker.RecordLength < 0 {
		return errors.New("STORE_CB_RECORD_LENGTH must be non-negative")
	}
	if c.Breaker.Enabled() && (c.Breaker.Percentile <= 0 || c.Breaker.Percentile > 1) {
		return errors.New("STORE_CB_PERCENTILE must be in (0, 1]")
	}
	if c.Kafka.IngestTopic != "" && !c.Kafka.Enabled() {
		return errors.New("KAFKA_INGEST_TOPIC requires KAFKA_ADDRS")
	}
	if c.Kafka.IngestTopic != "" && c.Kafka.IngestTopic == c.Kafka.EventsTopic {
		return fmt.Errorf("KAFKA_INGEST_TOPIC must differ from KAFKA_EVENTS_TOPIC (%s)", c.Kafka.EventsTopic)
	}
	return nil
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
