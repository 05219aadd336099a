package accrual

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
)

const (
	pathUpdateRate = "accrual/update_rate"
	pathMove       = "accrual/move"
)

var _ tidemark.Msg = (*UpdateRateMsg)(nil)
var _ tidemark.Msg = (*MoveMsg)(nil)

// UpdateRateMsg lowers the ledger wide accrual rate. Only the
// configured owner can deliver it.
type UpdateRateMsg struct {
	Rate tidemark.Rate `json:"rate"`
}

// Path returns the routing path for this message.
func (UpdateRateMsg) Path() string {
	return pathUpdateRate
}

// Validate ensures the rate is well formed. Whether it lowers the
// current rate is a stateful check done by the handler.
func (m *UpdateRateMsg) Validate() error {
	if err := m.Rate.Validate(); err != nil {
		return errors.Field("Rate", err, "invalid rate")
	}
	return nil
}

// MoveMsg transfers funds between two accounts on this ledger.
type MoveMsg struct {
	Source      tidemark.Address `json:"source"`
	Destination tidemark.Address `json:"destination"`
	Amount      coin.Coin        `json:"amount"`
}

// Path returns the routing path for this message.
func (MoveMsg) Path() string {
	return pathMove
}

// Validate ensures the transfer is well formed.
func (m *MoveMsg) Validate() error {
	var err error
	if e := m.Source.Validate(); e != nil {
		err = errors.AppendField(err, "Source", e)
	}
	if e := m.Destination.Validate(); e != nil {
		err = errors.AppendField(err, "Destination", e)
	}
	if e := m.Amount.Validate(); e != nil {
		err = errors.AppendField(err, "Amount", e)
	} else if !m.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount",
			errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if m.Source.Equals(m.Destination) {
		err = errors.AppendField(err, "Destination",
			errors.Wrap(errors.ErrInput, "same as source"))
	}
	return err
}
