package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errFlaky = errors.New("flaky")

func fastPolicy(retries uint64) Policy {
	return Policy{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls, notified := 0, 0
	err := Do(context.Background(), fastPolicy(3), isFlaky,
		func(error, time.Duration) { notified++ },
		func() error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, notified)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), isFlaky, nil, func() error {
		calls++
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryPermanentErrors(t *testing.T) {
	conflict := errors.New("conflict")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), isFlaky, nil, func() error {
		calls++
		return conflict
	})

	assert.Equal(t, conflict, err)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastPolicy(5), isFlaky, nil, func() error {
		calls++
		return errFlaky
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
