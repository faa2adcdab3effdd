// Package service holds helpers shared by the domain services in its
// subpackages.
package service

import (
	"context"
	"time"

	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/retry"
)

// Storage runs repository calls, retrying transient failures under Policy.
type Storage struct {
	Policy  retry.Policy
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

func NewStorage(policy retry.Policy, logger *logger.Logger, m *metrics.Metrics) Storage {
	return Storage{Policy: policy, Logger: logger, Metrics: m}
}

// Do returns fn's last error unchanged; only repository.ErrTransient is retried.
func (s Storage) Do(ctx context.Context, op string, fn func() error) error {
	return retry.Do(ctx, s.Policy, repository.IsTransient,
		func(err error, wait time.Duration) {
			s.Metrics.StorageRetries.WithLabelValues(op).Inc()
			s.Logger.Warn("retrying storage call", "operation", op, "wait", wait.String(), "error", err.Error())
		},
		fn,
	)
}

// StorageError converts an error that is not a domain outcome. Transient faults
// become Unavailable so clients can tell them apart from a rejected request.
func StorageError(err error) *errors.AppError {
	if repository.IsTransient(err) {
		return errors.Unavailable(err)
	}
	return errors.Internal(err)
}
