package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.NoError(t, WrapCache(nil))
	assert.NoError(t, WrapCollaborator("llm", nil))
	assert.NoError(t, WrapRedis(nil))
}

func TestAppError_Message(t *testing.T) {
	base := errors.New("database is locked")
	err := WrapCache(base)

	assert.Equal(t, "response cache unavailable: database is locked", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))

	assert.Equal(t, "boom", New(nil, http.StatusTeapot, "boom").Error())
}

func TestWrapCollaborator(t *testing.T) {
	base := errors.New("quota exceeded")
	err := WrapCollaborator("places text search", base)

	assert.Equal(t, "collaborator call failed: places text search: quota exceeded", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestWrapRedis(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(WrapRedis(redis.Nil)))
	assert.Equal(t, http.StatusBadGateway, StatusOf(WrapRedis(errors.New("connection refused"))))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))

	wrapped := fmt.Errorf("load history: %w", WrapCache(errors.New("io")))
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(wrapped))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, CacheErrorMessage, appErr.Message)
}
