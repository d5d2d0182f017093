package handoff

import (
	"context"
	"errors"
	"log/slog"

	"idproof/internal/kyc/ports"
	"idproof/pkg/requestcontext"
)

// Func adapts a plain function to ports.HandoffPort, for callers that embed the
// engine and consume results in-process.
type Func func(ctx context.Context, result ports.Result) error

func (f Func) Deliver(ctx context.Context, result ports.Result) error {
	return f(ctx, result)
}

// Fanout delivers to every port and joins the failures.
type Fanout []ports.HandoffPort

func (f Fanout) Deliver(ctx context.Context, result ports.Result) error {
	var errs []error
	for _, port := range f {
		if err := port.Deliver(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes the result summary to the log. It is the default port when no
// broker is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Deliver(ctx context.Context, result ports.Result) error {
	p := NewPayload(result, requestcontext.Now(ctx))
	l.logger.InfoContext(ctx, "verification result handed off",
		"session_id", p.SessionID,
		"approved", p.Approved,
		"verdict", p.Verdict.Kind,
		"reason", p.Verdict.Reason,
		"priority", p.Verdict.Priority,
		"case_id", p.Verdict.CaseID,
	)
	return nil
}
