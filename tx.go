package tidemark

import (
	"reflect"

	"github.com/tidemark-io/tidemark/errors"
)

// Msg is the request passed into a handler. In a deployed chain a message
// arrives wrapped in a transaction; the execution environment serializes
// delivery, so messages themselves carry no ordering information.
type Msg interface {
	// Validate performs a sanity check on the message content. It must not
	// inspect any state; stateful checks belong to the handler.
	Validate() error

	// Path is the routing key used to direct a message to its handler.
	// It is of the format "<extension>/<message name>".
	Path() string
}

// Tx represents the signed transaction wrapper around a message. Signature
// handling and fee payment are the concern of the execution environment;
// handlers only ever extract the message.
type Tx interface {
	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// LoadMsg extracts the message from given transaction into dest. The
// result is stored in the value pointed by dest. A message is always
// validated before it is returned.
func LoadMsg(tx Tx, dest Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "transaction without a message")
	}

	if !reflect.TypeOf(msg).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "want %T, got %T", dest, msg)
	}

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(msg).Elem())
	return nil
}
