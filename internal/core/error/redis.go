package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis tags session store failures. A missing thread key is a 404 so
// callers can tell an empty thread from an unreachable server (502).
func WrapRedis(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	default:
		return New(err, http.StatusBadGateway, RedisErrorMessage)
	}
}
