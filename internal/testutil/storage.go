package testutil

import (
	"time"

	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/retry"
)

// Storage returns a storage runner that retries twice with millisecond waits.
func Storage() service.Storage {
	return service.NewStorage(
		retry.Policy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		logger.Nop(),
		metrics.NewNop(),
	)
}
