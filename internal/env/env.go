package env

import (
	"fmt"
	"os"
)

const (
	BotToken         = "BOT_TOKEN"
	AdminIDs         = "ADMIN_IDS"
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	EventsRedisURL   = "EVENTS_REDIS_URL"
	EventsRedisPass  = "EVENTS_REDIS_PASS"
	OpsSecret        = "OPS_SECRET"
	OpsAddr          = "OPS_ADDR"
	MetricsAddr      = "METRICS_ADDR"
	OpsFeedURL       = "OPS_FEED_URL"
	RetentionDays    = "RETENTION_DAYS"
	RetentionAnchor  = "RETENTION_FROM_RESOLUTION"
	AllowReopen      = "ALLOW_REOPEN"
	WorkHours        = "WORK_HOURS"
	SweepInterval    = "SWEEP_INTERVAL"
)

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

// Require reports the first missing key so the process can exit non-zero at
// startup instead of panicking mid-flow.
func Require(keys ...string) error {
	for _, key := range keys {
		if os.Getenv(key) == "" {
			return fmt.Errorf("env: required environment variable not set: %s", key)
		}
	}
	return nil
}
