package testutil

import (
	"context"
	"time"

	"idproof/pkg/requestcontext"
)

// AtTime returns a context whose request-scoped clock is pinned to t.
func AtTime(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
