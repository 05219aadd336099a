package app

import (
	"regexp"

	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
)

// isPath matches the "extension/operation" form every message path
// must follow.
var isPath = regexp.MustCompile(`^[a-z][a-z0-9_]*/[a-z0-9_]+$`).MatchString

// Router maps message paths to their handlers. It implements both
// the Registry side used during setup and the Handler side used
// during execution.
type Router struct {
	routes map[string]tidemark.Handler
}

var _ tidemark.Registry = (*Router)(nil)
var _ tidemark.Handler = (*Router)(nil)

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]tidemark.Handler),
	}
}

// Handle registers a handler for a path. It panics on a malformed
// path or a duplicate registration, both are programmer errors.
func (r *Router) Handle(path string, h tidemark.Handler) {
	if !isPath(path) {
		panic("invalid path: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("duplicate path: " + path)
	}
	r.routes[path] = h
}

// Handler returns the handler registered for a path, or a handler
// that fails every call when the path is unknown.
func (r *Router) Handler(path string) tidemark.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the handler registered for the message path.
func (r *Router) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Check(ctx, db, tx)
}

// Deliver dispatches to the handler registered for the message path.
func (r *Router) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Deliver(ctx, db, tx)
}

func msgPath(tx tidemark.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrState, "transaction without a message")
	}
	return msg.Path(), nil
}

type notFoundHandler string

var _ tidemark.Handler = notFoundHandler("")

func (p notFoundHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(p))
}

func (p notFoundHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(p))
}
