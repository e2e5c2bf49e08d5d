package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration of an operation when the returned func runs,
// typically via defer. Passing the error pointer lets the deferred call see
// the final named return value.
func Time(ctx context.Context, log zerolog.Logger, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		ev := log.Debug().Str("op", name).Dur("dur", time.Since(start))
		if reqID != "" {
			ev = ev.Str("req_id", reqID)
		}
		if errp != nil && *errp != nil {
			ev.Err(*errp).Msg("op failed")
			return
		}
		ev.Msg("op done")
	}
}
