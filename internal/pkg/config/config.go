package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration, shared by the ingest, worker,
// and dispatcher binaries.
type Config struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	MaxEventSize int64  `env:"MAX_EVENT_SIZE_BYTES" envDefault:"1048576"` // 1MB

	RedisAddr   string `env:"REDIS_ADDR,required"`
	PostgresURL string `env:"POSTGRES_URL,required"`

	EventStream   string `env:"EVENT_STREAM" envDefault:"text_events"`
	ConsumerGroup string `env:"CONSUMER_GROUP" envDefault:"event-processors"`

	IngestServerAddr string `env:"INGEST_SERVER_ADDR" envDefault:":8080"`
	WorkerServerAddr string `env:"WORKER_SERVER_ADDR" envDefault:":8081"`
	AdminServerAddr  string `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`

	// PublishAckWait bounds how long the publish gateway waits for the
	// broker-assigned message id before synthesizing the "pending" handle.
	PublishAckWait time.Duration `env:"PUBLISH_ACK_WAIT" envDefault:"1s"`

	WorkerURL         string        `env:"WORKER_URL" envDefault:"http://localhost:8081/process"`
	DispatchBatchSize int           `env:"DISPATCH_BATCH_SIZE" envDefault:"100"`
	DispatchInterval  time.Duration `env:"DISPATCH_INTERVAL" envDefault:"1s"`
	DispatchWorkers   int           `env:"DISPATCH_WORKERS" envDefault:"8"`
	RedeliveryMinIdle time.Duration `env:"REDELIVERY_MIN_IDLE" envDefault:"30s"`

	// ProcessingUnitCost is the simulated cost per character of text.
	ProcessingUnitCost time.Duration `env:"PROCESSING_UNIT_COST" envDefault:"50ms"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
