package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvPublicBaseURL      = "PUBLIC_BASE_URL"
	EnvMessageGatewayURL  = "MESSAGE_GATEWAY_URL"
	EnvOutboundTopic      = "OUTBOUND_MESSAGES_TOPIC"
	EnvOutboundDLQTopic   = "OUTBOUND_MESSAGES_DLQ_TOPIC"
	EnvDispatcherGroupID  = "DISPATCHER_GROUP_ID"
	EnvSessionWindow      = "CONFIRMATION_SESSION_WINDOW"
	EnvAutoReplaceAfter   = "AUTO_REPLACE_AFTER"
	EnvGuestsPerServer    = "GUESTS_PER_SERVER"
	EnvGuestsPerChef      = "GUESTS_PER_CHEF"
	EnvGuestsPerBartender = "GUESTS_PER_BARTENDER"

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
