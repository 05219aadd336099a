package accrual

import (
	common "github.com/tendermint/tendermint/libs/common"

	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/x"
)

const (
	updateRateCost int64 = 50
	moveCost       int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this package
func RegisterRoutes(r tidemark.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathUpdateRate, updateRateHandler{auth: auth, control: control})
	r.Handle(pathMove, moveHandler{auth: auth, control: control})
}

type updateRateHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ tidemark.Handler = updateRateHandler{}

func (h updateRateHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: updateRateCost}, nil
}

func (h updateRateHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.control.SetRate(db, tidemark.AsUnixTime(blockTime), msg.Rate); err != nil {
		return nil, err
	}
	res := tidemark.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("accrual:rate"), Value: []byte(msg.Rate.String())},
		},
	}
	return &res, nil
}

// validate extracts the message and ensures the signer is the
// configured ledger owner
func (h updateRateHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*UpdateRateMsg, error) {
	var msg UpdateRateMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the owner can update the rate")
	}
	return &msg, nil
}

type moveHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ tidemark.Handler = moveHandler{}

func (h moveHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: moveCost}, nil
}

func (h moveHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := tidemark.AsUnixTime(blockTime)
	if err := h.control.Move(db, now, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &tidemark.DeliverResult{}, nil
}

func (h moveHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*MoveMsg, error) {
	var msg MoveMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	return &msg, nil
}
