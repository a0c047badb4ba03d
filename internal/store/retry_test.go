package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	apperrors "trade-journal/internal/errors"
)

func fastRetry() retryConfig {
	return retryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}
}

func TestRetry_BusyThenSuccess(t *testing.T) {
	calls := 0
	got, err := retryWithResult(context.Background(), fastRetry(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, apperrors.NewStoreError("snapshot", sqlite3.Error{Code: sqlite3.ErrBusy})
		}
		return 7, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	_, err := retryWithResult(context.Background(), fastRetry(), func() (int, error) {
		calls++
		return 0, sqlite3.Error{Code: sqlite3.ErrLocked}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_OtherErrorsFailFast(t *testing.T) {
	calls := 0
	_, err := retryWithResult(context.Background(), fastRetry(), func() (int, error) {
		calls++
		return 0, apperrors.ErrJournalNotFound
	})
	assert.ErrorIs(t, err, apperrors.ErrJournalNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := fastRetry()
	cfg.InitialDelay = time.Hour
	_, err := retryWithResult(ctx, cfg, func() (int, error) {
		return 0, sqlite3.Error{Code: sqlite3.ErrBusy}
	})
	assert.True(t, errors.Is(err, context.Canceled))
}
