package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvPaymentDeadline     = "PAYMENT_DEADLINE"
	EnvExpirySweepInterval = "EXPIRY_SWEEP_INTERVAL"
	EnvSeatsPerTable       = "SEATS_PER_TABLE"

	EnvUploadDir     = "UPLOAD_DIR"
	EnvMaxUploadSize = "MAX_UPLOAD_SIZE"

	EnvSlipOKAPIURL   = "SLIPOK_API_URL"
	EnvSlipOKBranchID = "SLIPOK_BRANCH_ID"
	EnvSlipOKAPIKey   = "SLIPOK_API_KEY"

	EnvCloudinaryURL    = "CLOUDINARY_URL"
	EnvCloudinaryFolder = "CLOUDINARY_FOLDER"

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
