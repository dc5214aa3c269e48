package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	"vizin/pkg/client"
	"vizin/pkg/logger"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoQueryTimeout time.Duration

	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	JWTSecret string

	PaymentGateway      string
	OmisePublicKey      string
	OmiseSecretKey      string
	OmiseCurrency       string
	GatewayTimeout      time.Duration
	ChargeSettleTimeout time.Duration
	PendingPaymentTTL   time.Duration
	SimulatedPrefix     string

	KafkaEnabled bool
	OTLPEndpoint string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ServiceName string
	Log         *logger.Logger
	Client      *client.Client
}

// Load reads the environment (after an optional .env file), validates it and
// exits the process on invalid configuration.
func Load(serviceName string) *Config {
	envFileErr := loadDotEnv()

	cfg, err := Parse(serviceName)
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
	if envFileErr != nil {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}

	cfg.Client = client.NewClient()
	cfg.LogConfiguration()
	return cfg
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Parse builds a Config from environment variables without side effects.
func Parse(serviceName string) (*Config, error) {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoQueryTimeout: getEnvDuration(EnvMongoQueryTimeout, DefaultMongoQueryTimeout),

		Port:        getEnvStr(EnvPort, DefaultPort),
		Environment: getEnvStr(EnvEnvironment, DefaultEnvironment),
		LogLevel:    getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat:   getEnvStr(EnvLogFormat, DefaultLogFormat),

		JWTSecret: os.Getenv(EnvJWTSecret),

		PaymentGateway:      getEnvStr(EnvPaymentGateway, DefaultPaymentGateway),
		OmisePublicKey:      os.Getenv(EnvOmisePublicKey),
		OmiseSecretKey:      os.Getenv(EnvOmiseSecretKey),
		OmiseCurrency:       getEnvStr(EnvOmiseCurrency, DefaultOmiseCurrency),
		GatewayTimeout:      getEnvDuration(EnvGatewayTimeout, DefaultGatewayTimeout),
		ChargeSettleTimeout: getEnvDuration(EnvChargeSettle, DefaultChargeSettle),
		PendingPaymentTTL:   getEnvDuration(EnvPendingTTL, DefaultPendingTTL),
		SimulatedPrefix:     getEnvStr(EnvSimulatedPrefix, DefaultSimulatedPrefix),

		KafkaEnabled: getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		OTLPEndpoint: os.Getenv(EnvOTLPEndpoint),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ServiceName: serviceName,
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Database() *mongo.Database {
	return cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
}

var mongoURIPattern = regexp.MustCompile(`^mongodb(\+srv)?://`)

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoURIPattern.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	// Only the HTTP API authenticates callers and charges payments.
	if cfg.ServiceName == ServiceBookings {
		if len(cfg.JWTSecret) < minJWTSecretLength {
			errors = append(errors, fmt.Sprintf("JWTSecret must be at least %d characters", minJWTSecretLength))
		}

		switch cfg.PaymentGateway {
		case GatewaySimulated:
			if cfg.SimulatedPrefix == "" {
				errors = append(errors, "SimulatedPrefix cannot be empty")
			}
		case GatewayOmise:
			if cfg.OmisePublicKey == "" || cfg.OmiseSecretKey == "" {
				errors = append(errors, "OmisePublicKey and OmiseSecretKey are required when PaymentGateway is omise")
			}
			if len(cfg.OmiseCurrency) != 3 {
				errors = append(errors, fmt.Sprintf("OmiseCurrency must be an ISO 4217 code, got: %s", cfg.OmiseCurrency))
			}
		default:
			errors = append(errors, fmt.Sprintf("PaymentGateway must be one of [simulated, omise], got: %s", cfg.PaymentGateway))
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"MongoQueryTimeout", cfg.MongoQueryTimeout},
		{"GatewayTimeout", cfg.GatewayTimeout},
		{"ChargeSettleTimeout", cfg.ChargeSettleTimeout},
		{"PendingPaymentTTL", cfg.PendingPaymentTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}
	if cfg.WriteTimeout > 0 && cfg.RequestTimeout >= cfg.WriteTimeout {
		errors = append(errors, fmt.Sprintf("RequestTimeout (%s) must be shorter than WriteTimeout (%s)", cfg.RequestTimeout, cfg.WriteTimeout))
	}
	if cfg.ChargeSettleTimeout < cfg.GatewayTimeout {
		errors = append(errors, fmt.Sprintf("ChargeSettleTimeout (%s) must not be shorter than GatewayTimeout (%s)", cfg.ChargeSettleTimeout, cfg.GatewayTimeout))
	}
	if cfg.PendingPaymentTTL > 0 && cfg.PendingPaymentTTL <= cfg.ChargeSettleTimeout {
		errors = append(errors, fmt.Sprintf("PendingPaymentTTL (%s) must be longer than ChargeSettleTimeout (%s)", cfg.PendingPaymentTTL, cfg.ChargeSettleTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_query_timeout", cfg.MongoQueryTimeout,
		"port", cfg.Port,
		"environment", cfg.Environment,
		"jwt_secret_set", cfg.JWTSecret != "",
		"payment_gateway", cfg.PaymentGateway,
		"omise_secret_set", cfg.OmiseSecretKey != "",
		"omise_currency", cfg.OmiseCurrency,
		"gateway_timeout", cfg.GatewayTimeout,
		"charge_settle_timeout", cfg.ChargeSettleTimeout,
		"pending_payment_ttl", cfg.PendingPaymentTTL,
		"kafka_enabled", cfg.KafkaEnabled,
		"otlp_endpoint", cfg.OTLPEndpoint,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

var credentialPattern = regexp.MustCompile(`(mongodb(\+srv)?://)[^:/@]+:[^@]+@`)

func redactMongoURI(uri string) string {
	return credentialPattern.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
