package bridge

import (
	"github.com/tidemark-io/tidemark/errors"
)

var (
	// ErrUnauthorizedSource is returned when an envelope does not
	// provably originate from the pool of a configured counterpart.
	ErrUnauthorizedSource = errors.Register(1100, "unauthorized source")

	// ErrUnsupportedLedger is returned when an envelope was delivered
	// to a ledger it was not addressed to.
	ErrUnsupportedLedger = errors.Register(1101, "unsupported ledger")

	// ErrRouteNotConfigured is returned when sending towards a ledger
	// no route exists for.
	ErrRouteNotConfigured = errors.Register(1102, "route not configured")

	// ErrRouteSuspended is returned when the route exists but was
	// administratively suspended.
	ErrRouteSuspended = errors.Register(1103, "route suspended")
)
