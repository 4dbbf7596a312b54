package internal

import (
	"time"

	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/ctxhelper"
	"github.com/derWhity/gigboard/internal/log"
)

// LogCalls is a middleware that logs each call of the endpoint together with its duration and outcome. The logger is
// taken from the call's context
func LogCalls(name string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			logger := ctxhelper.Logger(ctx).WithField(log.FldEndpoint, name)
			defer func(begin time.Time) {
				logger = logger.WithField(log.FldDuration, time.Since(begin))
				if err != nil {
					logger.WithError(err).Info("Endpoint call failed")
					return
				}
				logger.Debug("Endpoint called")
			}(time.Now())
			return next(ctx, request)
		}
	}
}
