package app

import (
	"time"

	"github.com/tidemark-io/tidemark"
)

// LoggingDecorator logs every processed transaction with its path,
// duration and outcome.
type LoggingDecorator struct{}

var _ tidemark.Decorator = LoggingDecorator{}

// Check logs the check outcome.
func (LoggingDecorator) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx, next tidemark.Checker) (*tidemark.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	logCall(ctx, "check", tx, start, err)
	return res, err
}

// Deliver logs the delivery outcome.
func (LoggingDecorator) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx, next tidemark.Deliverer) (*tidemark.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	logCall(ctx, "deliver", tx, start, err)
	return res, err
}

func logCall(ctx tidemark.Context, call string, tx tidemark.Tx, start time.Time, err error) {
	path := "?"
	if msg, merr := tx.GetMsg(); merr == nil && msg != nil {
		path = msg.Path()
	}
	logger := tidemark.GetLogger(ctx).With(
		"call", call,
		"path", path,
		"duration", time.Since(start),
	)
	if err != nil {
		logger.Error("transaction failed", "cause", err)
	} else {
		logger.Info("transaction processed")
	}
}
