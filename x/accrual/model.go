package accrual

import (
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/orm"
)

var _ orm.Model = (*Account)(nil)
var _ orm.Model = (*RateState)(nil)
var _ orm.Model = (*Supply)(nil)

// Validate ensures the account is stored in a consistent state.
func (a *Account) Validate() error {
	var err error
	if e := a.Principal.Validate(); e != nil {
		err = errors.AppendField(err, "Principal", e)
	} else if !a.Principal.IsNonNegative() {
		err = errors.AppendField(err, "Principal",
			errors.Wrap(errors.ErrAmount, "negative principal"))
	}
	if e := a.LockedRate.Validate(); e != nil {
		err = errors.AppendField(err, "LockedRate", e)
	}
	if e := a.UpdatedAt.Validate(); e != nil {
		err = errors.AppendField(err, "UpdatedAt", e)
	}
	return err
}

// Validate ensures the rate state is consistent.
func (r *RateState) Validate() error {
	var err error
	if e := r.Rate.Validate(); e != nil {
		err = errors.AppendField(err, "Rate", e)
	}
	if e := r.UpdatedAt.Validate(); e != nil {
		err = errors.AppendField(err, "UpdatedAt", e)
	}
	return err
}

// Validate ensures the supply counter never goes negative.
func (s *Supply) Validate() error {
	if err := s.Total.Validate(); err != nil {
		return errors.Field("Total", err, "invalid total")
	}
	if !s.Total.IsNonNegative() {
		return errors.Field("Total", errors.ErrAmount, "negative supply")
	}
	return nil
}

// Validate ensures the configuration loaded from genesis is usable.
func (c *Config) Validate() error {
	var err error
	if e := c.Owner.Validate(); e != nil {
		err = errors.AppendField(err, "Owner", e)
	}
	if !coin.IsCC(c.Ticker) {
		err = errors.AppendField(err, "Ticker",
			errors.Wrapf(errors.ErrCurrency, "invalid ticker: %s", c.Ticker))
	}
	return err
}

// NewAccountBucket returns a bucket for keeping accounts, keyed
// by the holder address.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("acct", &Account{})
}

// NewRateStateBucket returns a bucket holding the rate singleton.
func NewRateStateBucket() orm.ModelBucket {
	return orm.NewModelBucket("accrate", &RateState{})
}

// NewSupplyBucket returns a bucket holding the supply singleton.
func NewSupplyBucket() orm.ModelBucket {
	return orm.NewModelBucket("accsupply", &Supply{})
}

// singletonKey is the fixed primary key used for the rate and
// supply records, which exist exactly once per ledger.
var singletonKey = []byte("s")
