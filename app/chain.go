package app

import (
	"github.com/tidemark-io/tidemark"
)

// Decorators is an ordered list of decorators waiting for a handler
// to wrap.
type Decorators struct {
	chain []tidemark.Decorator
}

// ChainDecorators takes a chain of decorators, to be used to wrap
// a handler. The first decorator wraps all the others.
func ChainDecorators(chain ...tidemark.Decorator) Decorators {
	return Decorators{chain: chain}
}

// Chain appends more decorators to the end of the chain.
func (c Decorators) Chain(rest ...tidemark.Decorator) Decorators {
	return Decorators{chain: append(c.chain, rest...)}
}

// WithHandler puts the handler at the end of the chain and returns
// the entry point of the whole stack.
func (c Decorators) WithHandler(h tidemark.Handler) tidemark.Handler {
	for i := len(c.chain) - 1; i >= 0; i-- {
		h = link{dec: c.chain[i], next: h}
	}
	return h
}

// link binds one decorator to the rest of the stack below it.
type link struct {
	dec  tidemark.Decorator
	next tidemark.Handler
}

var _ tidemark.Handler = link{}

func (l link) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l link) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
