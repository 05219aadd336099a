package app

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/store"
)

// Application runs a single ledger: a commit store holding the state
// and a handler stack processing transactions block by block.
type Application struct {
	logger  log.Logger
	name    string
	store   tidemark.CommitKVStore
	handler tidemark.Handler

	// block is the working set of the block being built, nil
	// between Commit and BeginBlock
	block    tidemark.KVCacheWrap
	blockCtx tidemark.Context
}

// NewApplication wires a commit store to a handler stack. The store
// is loaded at its latest persisted version.
func NewApplication(name string, kv tidemark.CommitKVStore, handler tidemark.Handler, logger log.Logger) (*Application, error) {
	if err := kv.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "cannot load latest version")
	}
	return &Application{
		logger:  logger,
		name:    name,
		store:   kv,
		handler: handler,
	}, nil
}

// InitGenesis runs all the initializers against a fresh working set
// and commits the result as the first version. It must only be called
// on an empty store.
func (a *Application) InitGenesis(opts tidemark.Options, inits ...tidemark.Initializer) error {
	if v := a.store.LatestVersion().Version; v != 0 {
		return errors.Wrapf(errors.ErrState, "store already at version %d", v)
	}
	wrap := a.store.CacheWrap()
	for _, ini := range inits {
		if err := ini.FromGenesis(opts, wrap); err != nil {
			wrap.Discard()
			return err
		}
	}
	wrap.Write()
	return nil
}

// BeginBlock opens a new block at the given time. All transactions
// delivered until the next Commit run against this block working set.
func (a *Application) BeginBlock(height int64, blockTime time.Time) {
	if a.block != nil {
		panic("previous block was not committed")
	}
	a.block = a.store.CacheWrap()

	ctx := context.Background()
	ctx = tidemark.WithLogger(ctx, a.logger.With("app", a.name, "height", height))
	ctx = tidemark.WithHeight(ctx, height)
	ctx = tidemark.WithBlockTime(ctx, blockTime)
	a.blockCtx = ctx
}

// CheckTx runs the transaction against a throwaway view of the block
// working set. It never modifies state.
func (a *Application) CheckTx(tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if a.block == nil {
		return nil, errors.Wrap(errors.ErrState, "no open block")
	}
	scratch := a.block.CacheWrap()
	defer scratch.Discard()
	return a.handler.Check(a.blockCtx, scratch, tx)
}

// DeliverTx executes the transaction against the block working set.
// The handler stack is expected to carry a savepoint decorator, so a
// failing transaction leaves no partial writes.
func (a *Application) DeliverTx(tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	if a.block == nil {
		return nil, errors.Wrap(errors.ErrState, "no open block")
	}
	return a.handler.Deliver(a.blockCtx, a.block, tx)
}

// Commit persists the block working set as the next store version.
func (a *Application) Commit() store.CommitID {
	if a.block == nil {
		panic("no open block")
	}
	a.block.Write()
	a.block = nil
	a.blockCtx = nil
	return a.store.LatestVersion()
}
