package bridge

import (
	common "github.com/tendermint/tendermint/libs/common"

	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
	"github.com/tidemark-io/tidemark/orm"
	"github.com/tidemark-io/tidemark/x"
	"github.com/tidemark-io/tidemark/x/accrual"
)

const (
	outboundCost int64 = 300
	inboundCost  int64 = 200
)

// RegisterRoutes will instantiate and register all handlers in this package
func RegisterRoutes(r tidemark.Registry, auth x.Authenticator, control accrual.Controller, transport Transport) {
	routes := NewRouteBucket()
	r.Handle(pathOutbound, outboundHandler{
		auth:      auth,
		control:   control,
		transport: transport,
		routes:    routes,
		nonces:    orm.NewSequence("bridge", "nonce"),
	})
	r.Handle(pathInbound, inboundHandler{
		control:   control,
		transport: transport,
		routes:    routes,
	})
}

type outboundHandler struct {
	auth      x.Authenticator
	control   accrual.Controller
	transport Transport
	routes    orm.ModelBucket
	nonces    orm.Sequence
}

var _ tidemark.Handler = outboundHandler{}

func (h outboundHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: outboundCost}, nil
}

func (h outboundHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := tidemark.AsUnixTime(blockTime)

	// The locked rate travels with the transfer, so it must be read
	// before the burn removes or rewrites the account record.
	acct, err := h.control.LoadAccount(db, msg.Source)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(accrual.ErrInsufficientBalance, "no account")
		}
		return nil, err
	}

	if err := h.control.Burn(db, now, msg.Source, msg.Amount); err != nil {
		return nil, err
	}

	// the nonce makes every envelope unique, two transfers with the
	// same recipient and amount must not collapse into one
	env := Envelope{
		SourceLedger:      conf.LedgerID,
		SourcePool:        PoolAddress(conf.LedgerID),
		DestinationLedger: msg.DestinationLedger,
		Recipient:         msg.Recipient,
		Amount:            msg.Amount,
		SenderRate:        acct.LockedRate,
		Nonce:             uint64(h.nonces.NextInt(db)),
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if err := h.transport.Send(env); err != nil {
		return nil, errors.Wrap(err, "transport send")
	}

	res := tidemark.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("bridge:outbound"), Value: []byte(msg.DestinationLedger)},
		},
	}
	return &res, nil
}

// validate extracts the message, checks the route is open and that
// the source account holder signed.
func (h outboundHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*OutboundMsg, error) {
	var msg OutboundMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	var route Route
	if err := h.routes.One(db, []byte(msg.DestinationLedger), &route); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrRouteNotConfigured, "no route to %q", msg.DestinationLedger)
		}
		return nil, err
	}
	if route.Suspended {
		return nil, errors.Wrapf(ErrRouteSuspended, "route to %q is suspended", msg.DestinationLedger)
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	return &msg, nil
}

type inboundHandler struct {
	control   accrual.Controller
	transport Transport
	routes    orm.ModelBucket
}

var _ tidemark.Handler = inboundHandler{}

func (h inboundHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: inboundCost}, nil
}

func (h inboundHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	env := msg.Envelope
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := tidemark.AsUnixTime(blockTime)

	// consumption happens only on delivery, a transaction check must
	// not use up the envelope
	if err := h.transport.Consume(env); err != nil {
		return nil, h.reject(ctx, env, err)
	}
	if err := h.control.Mint(db, now, env.Recipient, env.Amount, env.SenderRate); err != nil {
		return nil, err
	}

	res := tidemark.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("bridge:inbound"), Value: []byte(env.SourceLedger)},
		},
	}
	return &res, nil
}

// validate checks the envelope authenticity and that it belongs on
// this ledger. Rejected envelopes are logged, their funds stay burned
// on the source until the counterpart reconciles.
func (h inboundHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*InboundMsg, error) {
	var msg InboundMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	env := msg.Envelope
	if err := h.transport.Authenticate(env, msg.Signature); err != nil {
		return nil, h.reject(ctx, env, err)
	}

	var route Route
	if err := h.routes.One(db, []byte(env.SourceLedger), &route); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, h.reject(ctx, env,
				errors.Wrapf(ErrUnauthorizedSource, "no route from %q", env.SourceLedger))
		}
		return nil, err
	}
	if !route.Pool.Equals(env.SourcePool) {
		return nil, h.reject(ctx, env,
			errors.Wrap(ErrUnauthorizedSource, "source pool does not match route"))
	}

	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	if env.DestinationLedger != conf.LedgerID {
		return nil, h.reject(ctx, env,
			errors.Wrapf(ErrUnsupportedLedger, "envelope addressed to %q", env.DestinationLedger))
	}
	return &msg, nil
}

func (h inboundHandler) reject(ctx tidemark.Context, env Envelope, err error) error {
	tidemark.GetLogger(ctx).With(
		"source", env.SourceLedger,
		"destination", env.DestinationLedger,
		"amount", env.Amount.String(),
	).Error("dropping envelope", "cause", err)
	return err
}

func loadConfig(db tidemark.ReadOnlyKVStore) (Config, error) {
	var conf Config
	err := gconf.Load(db, "bridge", &conf)
	return conf, err
}
