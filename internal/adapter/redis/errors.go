package redis

import (
	"context"
	"errors"
	"net"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
)

// storeError classifies a failed round trip. Deadlines and cancellations are
// indeterminate: the command may have been applied before the client gave up.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	var redisErr goredis.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.TimeoutError("redis "+op+" did not complete", err).WithField("operation", op)
	case errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.TimeoutError("redis "+op+" did not complete", err).WithField("operation", op)
	case errors.Is(err, circuitbreaker.ErrOpen):
		return apperrors.UnavailableError("redis circuit breaker open", err).WithField("operation", op)
	case errors.As(err, &redisErr):
		// server replied with an error (WRONGTYPE, OOM, ...)
		return apperrors.InternalError("redis "+op+" rejected", err).WithField("operation", op)
	default:
		return apperrors.UnavailableError("redis "+op+" failed", err).WithField("operation", op)
	}
}
