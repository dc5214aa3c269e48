package config

import "time"

const (
	ServiceBookings = "bookings"

	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "vizin"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoQueryTimeout = 5 * time.Second

	DefaultPort        = "8080"
	DefaultEnvironment = "dev"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	GatewaySimulated = "simulated"
	GatewayOmise     = "omise"

	DefaultPaymentGateway  = GatewaySimulated
	DefaultOmiseCurrency   = "thb"
	DefaultGatewayTimeout  = 15 * time.Second
	DefaultChargeSettle    = 2 * time.Minute
	DefaultPendingTTL      = 10 * time.Minute
	DefaultSimulatedPrefix = "44"
	DefaultKafkaEnabled    = false

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	minJWTSecretLength = 16
)
