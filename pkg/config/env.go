package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoQueryTimeout = "MONGO_QUERY_TIMEOUT"

	EnvPort        = "PORT"
	EnvEnvironment = "APP_ENV"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"

	EnvPaymentGateway    = "PAYMENT_GATEWAY"
	EnvOmisePublicKey    = "OMISE_PUBLIC_KEY"
	EnvOmiseSecretKey    = "OMISE_SECRET_KEY"
	EnvOmiseCurrency     = "OMISE_CURRENCY"
	EnvGatewayTimeout    = "PAYMENT_GATEWAY_TIMEOUT"
	EnvChargeSettle      = "PAYMENT_CHARGE_SETTLE_TIMEOUT"
	EnvPendingTTL        = "PAYMENT_PENDING_TTL"
	EnvSimulatedPrefix   = "SIMULATED_APPROVAL_PREFIX"
	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
