package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tablebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	// DefaultPaymentDeadline is how long a pending booking holds its seats
	// before the expiry reconciler releases them.
	DefaultPaymentDeadline     = 20 * time.Minute
	DefaultExpirySweepInterval = 6 * time.Minute
	DefaultSeatsPerTable       = 9

	DefaultUploadDir     = "./uploads"
	DefaultMaxUploadSize = 5 * 1024 * 1024 // 5MB, payment slips only

	DefaultSlipOKAPIURL     = "https://api.slipok.com/api/line/apikey"
	DefaultCloudinaryFolder = "booking_payment_proofs"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 6 * 1024 * 1024 // leaves headroom above the upload cap

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
