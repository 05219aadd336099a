package vault

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
	"github.com/tidemark-io/tidemark/orm"
	"github.com/tidemark-io/tidemark/x"
	"github.com/tidemark-io/tidemark/x/accrual"
)

const (
	depositCost  int64 = 150
	withdrawCost int64 = 150
)

// RegisterRoutes will instantiate and register all handlers in this package
func RegisterRoutes(r tidemark.Registry, auth x.Authenticator, control accrual.Controller) {
	reserves := NewReserveBucket()
	r.Handle(pathDeposit, depositHandler{auth: auth, control: control, reserves: reserves})
	r.Handle(pathWithdraw, withdrawHandler{auth: auth, control: control, reserves: reserves})
}

type depositHandler struct {
	auth     x.Authenticator
	control  accrual.Controller
	reserves orm.ModelBucket
}

var _ tidemark.Handler = depositHandler{}

func (h depositHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: depositCost}, nil
}

func (h depositHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := tidemark.AsUnixTime(blockTime)

	// every deposit locks whatever the ledger rate is right now
	rate, err := h.control.CurrentRate(db)
	if err != nil {
		return nil, err
	}
	if err := h.control.Mint(db, now, msg.Depositor, msg.Amount, rate); err != nil {
		return nil, err
	}
	if err := h.growReserve(db, msg.Depositor, msg.Amount); err != nil {
		return nil, err
	}
	return &tidemark.DeliverResult{}, nil
}

// validate extracts the message and ensures the issuer signed.
func (h depositHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*DepositMsg, error) {
	var msg DepositMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Issuer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the issuer can deposit")
	}
	return &msg, nil
}

func (h depositHandler) growReserve(db tidemark.KVStore, user tidemark.Address, amount coin.Coin) error {
	var res Reserve
	switch err := h.reserves.One(db, user, &res); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		res.Deposited = coin.Coin{Ticker: amount.Ticker}
	default:
		return err
	}
	sum, err := res.Deposited.Add(amount)
	if err != nil {
		return err
	}
	res.Deposited = sum
	_, err = h.reserves.Put(db, user, &res)
	return err
}

type withdrawHandler struct {
	auth     x.Authenticator
	control  accrual.Controller
	reserves orm.ModelBucket
}

var _ tidemark.Handler = withdrawHandler{}

func (h withdrawHandler) Check(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tidemark.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h withdrawHandler) Deliver(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*tidemark.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, err := tidemark.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := tidemark.AsUnixTime(blockTime)

	var burned coin.Coin
	if msg.Amount == nil {
		burned, err = h.control.BurnAll(db, now, msg.Source)
		if err != nil {
			return nil, err
		}
	} else {
		if err := h.control.Burn(db, now, msg.Source, *msg.Amount); err != nil {
			return nil, err
		}
		burned = *msg.Amount
	}
	if err := h.shrinkReserve(db, msg.Source, burned); err != nil {
		return nil, err
	}
	return &tidemark.DeliverResult{}, nil
}

// validate extracts the message and ensures the account holder signed.
func (h withdrawHandler) validate(ctx tidemark.Context, db tidemark.KVStore, tx tidemark.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := tidemark.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	return &msg, nil
}

// shrinkReserve releases burned funds from the reserve. Interest can
// let a user redeem more than was deposited for them, the reserve is
// clamped at zero in that case.
func (h withdrawHandler) shrinkReserve(db tidemark.KVStore, user tidemark.Address, burned coin.Coin) error {
	var res Reserve
	switch err := h.reserves.One(db, user, &res); {
	case errors.ErrNotFound.Is(err):
		return nil
	case err != nil:
		return err
	}
	left, err := res.Deposited.Subtract(burned)
	if err != nil {
		return err
	}
	if !left.IsNonNegative() {
		left = coin.Coin{Ticker: left.Ticker}
	}
	res.Deposited = left
	_, err = h.reserves.Put(db, user, &res)
	return err
}

func loadConfig(db tidemark.ReadOnlyKVStore) (Config, error) {
	var conf Config
	err := gconf.Load(db, "vault", &conf)
	return conf, err
}
