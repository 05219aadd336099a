package bridge

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
)

const (
	pathOutbound = "bridge/outbound"
	pathInbound  = "bridge/inbound"
)

var _ tidemark.Msg = (*OutboundMsg)(nil)
var _ tidemark.Msg = (*InboundMsg)(nil)

// OutboundMsg starts a cross ledger transfer. The amount is burned
// from the source account and an envelope is handed to the transport.
type OutboundMsg struct {
	Source            tidemark.Address `json:"source"`
	DestinationLedger string           `json:"destination_ledger"`
	Recipient         tidemark.Address `json:"recipient"`
	Amount            coin.Coin        `json:"amount"`
}

// Path returns the routing path for this message.
func (OutboundMsg) Path() string {
	return pathOutbound
}

// Validate ensures the transfer request is well formed.
func (m *OutboundMsg) Validate() error {
	var err error
	if e := m.Source.Validate(); e != nil {
		err = errors.AppendField(err, "Source", e)
	}
	if !validLedgerID(m.DestinationLedger) {
		err = errors.AppendField(err, "DestinationLedger",
			errors.Wrap(errors.ErrInput, "invalid ledger id"))
	}
	if e := m.Recipient.Validate(); e != nil {
		err = errors.AppendField(err, "Recipient", e)
	}
	if e := m.Amount.Validate(); e != nil {
		err = errors.AppendField(err, "Amount", e)
	} else if !m.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount",
			errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	return err
}

// InboundMsg completes a cross ledger transfer on the destination
// ledger. The signature proves the envelope was emitted by the
// transport of the source ledger.
type InboundMsg struct {
	Envelope  Envelope `json:"envelope"`
	Signature []byte   `json:"signature"`
}

// Path returns the routing path for this message.
func (InboundMsg) Path() string {
	return pathInbound
}

// Validate ensures the envelope is complete. Signature verification
// is stateful and done by the handler through the transport.
func (m *InboundMsg) Validate() error {
	var err error
	if e := m.Envelope.Validate(); e != nil {
		err = errors.AppendField(err, "Envelope", e)
	}
	if len(m.Signature) == 0 {
		err = errors.AppendField(err, "Signature",
			errors.Wrap(errors.ErrInput, "missing signature"))
	}
	return err
}
