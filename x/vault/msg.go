package vault

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
)

const (
	pathDeposit  = "vault/deposit"
	pathWithdraw = "vault/withdraw"
)

var _ tidemark.Msg = (*DepositMsg)(nil)
var _ tidemark.Msg = (*WithdrawMsg)(nil)

// DepositMsg mints funds for a user at the current ledger rate. Only
// the configured issuer can deliver it.
type DepositMsg struct {
	Depositor tidemark.Address `json:"depositor"`
	Amount    coin.Coin        `json:"amount"`
}

// Path returns the routing path for this message.
func (DepositMsg) Path() string {
	return pathDeposit
}

// Validate ensures the deposit is well formed.
func (m *DepositMsg) Validate() error {
	var err error
	if e := m.Depositor.Validate(); e != nil {
		err = errors.AppendField(err, "Depositor", e)
	}
	if e := m.Amount.Validate(); e != nil {
		err = errors.AppendField(err, "Amount", e)
	} else if !m.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount",
			errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	return err
}

// WithdrawMsg burns funds from the source account and releases the
// matching reserve. A nil amount redeems the whole settled balance.
type WithdrawMsg struct {
	Source tidemark.Address `json:"source"`
	Amount *coin.Coin       `json:"amount"`
}

// Path returns the routing path for this message.
func (WithdrawMsg) Path() string {
	return pathWithdraw
}

// Validate ensures the withdrawal is well formed.
func (m *WithdrawMsg) Validate() error {
	var err error
	if e := m.Source.Validate(); e != nil {
		err = errors.AppendField(err, "Source", e)
	}
	if m.Amount != nil {
		if e := m.Amount.Validate(); e != nil {
			err = errors.AppendField(err, "Amount", e)
		} else if !m.Amount.IsPositive() {
			err = errors.AppendField(err, "Amount",
				errors.Wrap(errors.ErrAmount, "must be positive"))
		}
	}
	return err
}
