package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvSessionKey    = "SESSION_KEY"
	EnvSessionTTL    = "SESSION_TTL"

	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaTopic    = "KAFKA_BOOKING_EVENTS_TOPIC"
	EnvKafkaGroupID  = "KAFKA_NOTIFIER_GROUP_ID"
	EnvKafkaDisabled = "KAFKA_DISABLED"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL    = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize    = "MAX_REQUEST_SIZE"
	EnvReadTimeout       = "READ_TIMEOUT"
	EnvWriteTimeout      = "WRITE_TIMEOUT"
	EnvIdleTimeout       = "IDLE_TIMEOUT"
	EnvShutdownTimeout   = "SHUTDOWN_TIMEOUT"
)
