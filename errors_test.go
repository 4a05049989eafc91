package docdex_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docdex/docdex"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", docdex.ErrorCode(nil))
	})

	t.Run("application error", func(t *testing.T) {
		t.Parallel()
		err := docdex.Errorf(docdex.ENOTFOUND, "source not found")
		assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
	})

	t.Run("wrapped application error", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("outer: %w", docdex.Errorf(docdex.EINVALID, "bad locator"))
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})

	t.Run("plain error maps to internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, docdex.EINTERNAL, docdex.ErrorCode(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := docdex.Errorf(docdex.ECONFLICT, "source %q already exists", "fastapi")
	assert.Equal(t, `source "fastapi" already exists`, docdex.ErrorMessage(err))
	assert.Equal(t, "Internal error.", docdex.ErrorMessage(errors.New("boom")))
	assert.Equal(t, "", docdex.ErrorMessage(nil))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	t.Run("unavailable is transient", func(t *testing.T) {
		t.Parallel()
		assert.True(t, docdex.IsTransient(docdex.Errorf(docdex.EUNAVAILABLE, "HTTP 503")))
	})

	t.Run("permanent codes are not", func(t *testing.T) {
		t.Parallel()
		assert.False(t, docdex.IsTransient(docdex.Errorf(docdex.EINVALID, "bad input")))
		assert.False(t, docdex.IsTransient(docdex.Errorf(docdex.ENOTFOUND, "gone")))
		assert.False(t, docdex.IsTransient(errors.New("boom")))
		assert.False(t, docdex.IsTransient(nil))
	})

	t.Run("context errors are never transient", func(t *testing.T) {
		t.Parallel()
		assert.False(t, docdex.IsTransient(context.Canceled))
		assert.False(t, docdex.IsTransient(context.DeadlineExceeded))
		assert.False(t, docdex.IsTransient(fmt.Errorf("fetch: %w", context.Canceled)))
	})
}
