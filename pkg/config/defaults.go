package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "brigade"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultPublicBaseURL     = "http://localhost:8080"
	DefaultMessageGatewayURL = "http://localhost:9090"
	DefaultOutboundTopic     = "staffing.outbound-messages"
	DefaultOutboundDLQTopic  = "staffing.outbound-messages.dlq"
	DefaultDispatcherGroupID = "staffing-dispatcher"

	// A confirmation session stays open for responses for one week.
	DefaultSessionWindow = 7 * 24 * time.Hour

	// A pending request older than this is a candidate for auto-replacement.
	DefaultAutoReplaceAfter = 48 * time.Hour

	DefaultGuestsPerServer    = 25
	DefaultGuestsPerChef      = 60
	DefaultGuestsPerBartender = 80

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
