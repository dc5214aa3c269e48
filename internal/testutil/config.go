package testutil

import (
	"time"

	"vizin/pkg/config"
	"vizin/pkg/logger"
)

// Config returns a config with a discarding logger and no Mongo client, good
// enough for services backed by the in-memory store.
func Config() *config.Config {
	return &config.Config{
		ServiceName:       "vizin-test",
		Environment:       "test",
		MongoQueryTimeout: time.Second,
		GatewayTimeout:    time.Second,
		PendingPaymentTTL: 10 * time.Minute,
		SimulatedPrefix:   "44",
		OmiseCurrency:     "thb",
		Log:               logger.Discard(),
	}
}
