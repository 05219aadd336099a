package tidetest

import "github.com/tidemark-io/tidemark"

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg tidemark.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ tidemark.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (tidemark.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a stub message implementation.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Err if set is returned by any method call.
	Err error
}

var _ tidemark.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
