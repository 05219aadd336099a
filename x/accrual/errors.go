package accrual

import (
	"github.com/tidemark-io/tidemark/errors"
)

var (
	// ErrRateIncrease is returned when trying to raise the ledger rate.
	// The ledger wide accrual rate can only ever be lowered.
	ErrRateIncrease = errors.Register(1000, "rate increase rejected")

	// ErrInsufficientBalance is returned when burning or moving more
	// than the settled balance of the account.
	ErrInsufficientBalance = errors.Register(1001, "insufficient balance")
)
