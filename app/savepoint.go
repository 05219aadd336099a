package app

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
)

// SavepointDecorator runs the rest of the stack inside a cache wrap
// and only writes it through on success. A failing transaction leaves
// no partial state behind.
type SavepointDecorator struct{}

var _ tidemark.Decorator = SavepointDecorator{}

// Check runs checks inside a throwaway cache wrap.
func (SavepointDecorator) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx, next tidemark.Checker) (*tidemark.CheckResult, error) {
	cache, err := wrap(db)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

// Deliver runs the transaction inside a cache wrap, writing through
// only when it succeeds.
func (SavepointDecorator) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx, next tidemark.Deliverer) (*tidemark.DeliverResult, error) {
	cache, err := wrap(db)
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

func wrap(db tidemark.KVStore) (tidemark.KVCacheWrap, error) {
	cached, ok := db.(tidemark.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "store cannot be cache wrapped")
	}
	return cached.CacheWrap(), nil
}
