package cache

import (
	"github.com/gymledger/gymledger/internal/logger"
)

// Initialize initializes the cache system
func Initialize(log *logger.Logger) *InMemoryCache {
	log.Info("Initializing cache system")

	InitializeInMemoryCache()

	return GetInMemoryCache()
}
