package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnirudhB3000/buildaquery/dberrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return dberrors.Normalize("postgres", "exec", errors.New("deadlock detected"))
		}
		return nil
	}, Policy{MaxAttempts: 5, SleepFunc: func(time.Duration) {}}, Hooks{})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonTransientError(t *testing.T) {
	attempts := 0
	sentinel := errors.New("syntax error near SELECT")
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return dberrors.Normalize("postgres", "exec", sentinel)
	}, Policy{MaxAttempts: 5, SleepFunc: func(time.Duration) {}}, Hooks{})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsMaxAttempts(t *testing.T) {
	attempts := 0
	var retried []uint64
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return dberrors.Normalize("postgres", "exec", errors.New("deadlock detected"))
	}, Policy{MaxAttempts: 3, SleepFunc: func(time.Duration) {}}, Hooks{
		OnRetry: func(attempt uint64, delay time.Duration, err error) {
			retried = append(retried, attempt)
		},
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []uint64{1, 2}, retried)
}
