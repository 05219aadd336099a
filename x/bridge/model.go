package bridge

import (
	tidemark "github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/orm"
)

var _ orm.Model = (*Route)(nil)
var _ orm.Model = (*Config)(nil)

// Validate ensures the route points to a usable pool.
func (r *Route) Validate() error {
	if err := r.Pool.Validate(); err != nil {
		return errors.Field("Pool", err, "invalid pool address")
	}
	return nil
}

// Validate ensures the bridge configuration is usable.
func (c *Config) Validate() error {
	if !validLedgerID(c.LedgerID) {
		return errors.Field("LedgerID", errors.ErrInput, "invalid ledger id")
	}
	return nil
}

// Validate ensures an envelope is complete before it is sent or
// minted from. Authenticity is checked separately by the transport.
func (e *Envelope) Validate() error {
	var err error
	if !validLedgerID(e.SourceLedger) {
		err = errors.AppendField(err, "SourceLedger",
			errors.Wrap(errors.ErrInput, "invalid ledger id"))
	}
	if ve := e.SourcePool.Validate(); ve != nil {
		err = errors.AppendField(err, "SourcePool", ve)
	}
	if !validLedgerID(e.DestinationLedger) {
		err = errors.AppendField(err, "DestinationLedger",
			errors.Wrap(errors.ErrInput, "invalid ledger id"))
	}
	if ve := e.Recipient.Validate(); ve != nil {
		err = errors.AppendField(err, "Recipient", ve)
	}
	if ve := e.Amount.Validate(); ve != nil {
		err = errors.AppendField(err, "Amount", ve)
	} else if !e.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount",
			errors.Wrap(errors.ErrAmount, "transfer amount must be positive"))
	}
	if ve := e.SenderRate.Validate(); ve != nil {
		err = errors.AppendField(err, "SenderRate", ve)
	}
	if e.Nonce == 0 {
		err = errors.AppendField(err, "Nonce",
			errors.Wrap(errors.ErrInput, "nonce is required"))
	}
	return err
}

func validLedgerID(id string) bool {
	if n := len(id); n < 2 || n > 32 {
		return false
	}
	for _, c := range id {
		if !(c == '-' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// NewRouteBucket returns a bucket for keeping transfer routes,
// keyed by the counterpart ledger id.
func NewRouteBucket() orm.ModelBucket {
	return orm.NewModelBucket("route", &Route{})
}

// PoolAddress derives the burn pool address of a ledger. The
// derivation is deterministic so a counterpart can verify the pool
// an envelope claims without any shared state.
func PoolAddress(ledgerID string) tidemark.Address {
	return tidemark.NewCondition("bridge", "pool", []byte(ledgerID)).Address()
}
