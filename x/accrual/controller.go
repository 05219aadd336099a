package accrual

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
	"github.com/tidemark-io/tidemark/orm"
)

// Controller provides the business logic of the accrual ledger.
// All mutating operations settle pending interest before touching
// any account state.
type Controller struct {
	accounts orm.ModelBucket
	rates    orm.ModelBucket
	supply   orm.ModelBucket
}

// NewController returns a controller operating on the default buckets.
func NewController() Controller {
	return Controller{
		accounts: NewAccountBucket(),
		rates:    NewRateStateBucket(),
		supply:   NewSupplyBucket(),
	}
}

// CurrentRate returns the ledger wide rate assigned to new mints.
func (c Controller) CurrentRate(db tidemark.ReadOnlyKVStore) (tidemark.Rate, error) {
	var state RateState
	if err := c.rates.One(db, singletonKey, &state); err != nil {
		return tidemark.Rate{}, errors.Wrap(err, "rate state")
	}
	return state.Rate, nil
}

// SetRate lowers the ledger wide rate. Raising the rate, or setting
// the same rate again, fails with ErrRateIncrease. Accounts keep the
// rate they locked at mint time, only new mints are affected.
func (c Controller) SetRate(db tidemark.KVStore, now tidemark.UnixTime, newRate tidemark.Rate) error {
	if err := newRate.Validate(); err != nil {
		return errors.Wrap(err, "new rate")
	}
	current, err := c.CurrentRate(db)
	if err != nil {
		return err
	}
	if newRate.Compare(current) >= 0 {
		return errors.Wrapf(ErrRateIncrease, "%s to %s", &current, &newRate)
	}
	state := RateState{Rate: newRate, UpdatedAt: now}
	if _, err := c.rates.Put(db, singletonKey, &state); err != nil {
		return errors.Wrap(err, "rate state")
	}
	return nil
}

// Balance returns the accrued balance of the account at the given
// time: principal plus the interest earned since the last settlement,
// truncated down. It never mutates state. A missing account reads as
// a zero balance.
func (c Controller) Balance(db tidemark.ReadOnlyKVStore, now tidemark.UnixTime, user tidemark.Address) (coin.Coin, error) {
	var acct Account
	switch err := c.accounts.One(db, user, &acct); {
	case err == nil:
		// continue below
	case errors.ErrNotFound.Is(err):
		conf, err := loadConfig(db)
		if err != nil {
			return coin.Coin{}, err
		}
		return coin.Coin{Ticker: conf.Ticker}, nil
	default:
		return coin.Coin{}, errors.Wrap(err, "account")
	}

	earned, err := interest(acct.Principal, acct.LockedRate, acct.UpdatedAt, now)
	if err != nil {
		return coin.Coin{}, err
	}
	return acct.Principal.Add(earned)
}

// Mint credits the account with the given amount and locks the given
// rate on it. Any previous lock is overwritten, but only after the
// interest it earned was settled.
func (c Controller) Mint(db tidemark.KVStore, now tidemark.UnixTime, user tidemark.Address, amount coin.Coin, rate tidemark.Rate) error {
	if err := c.checkAmount(db, amount); err != nil {
		return err
	}
	if err := rate.Validate(); err != nil {
		return errors.Wrap(err, "rate")
	}

	var acct Account
	var earned coin.Coin
	switch err := c.accounts.One(db, user, &acct); {
	case err == nil:
		earned, err = c.settle(&acct, now)
		if err != nil {
			return err
		}
	case errors.ErrNotFound.Is(err):
		acct = Account{
			Principal: coin.Coin{Ticker: amount.Ticker},
			UpdatedAt: now,
		}
	default:
		return errors.Wrap(err, "account")
	}

	// the lock is overwritten only after settlement
	acct.LockedRate = rate

	total, err := acct.Principal.Add(amount)
	if err != nil {
		return err
	}
	acct.Principal = total

	if err := c.addSupply(db, earned); err != nil {
		return err
	}
	if _, err := c.accounts.Put(db, user, &acct); err != nil {
		return errors.Wrap(err, "account")
	}
	return c.addSupply(db, amount)
}

// Burn destroys the given amount from the account. The amount is
// checked against the freshly settled balance, so interest earned up
// to now can be burned as well.
func (c Controller) Burn(db tidemark.KVStore, now tidemark.UnixTime, user tidemark.Address, amount coin.Coin) error {
	if err := c.checkAmount(db, amount); err != nil {
		return err
	}

	var acct Account
	if err := c.accounts.One(db, user, &acct); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(ErrInsufficientBalance, "no account %s", user)
		}
		return errors.Wrap(err, "account")
	}

	earned, err := c.settle(&acct, now)
	if err != nil {
		return err
	}
	if !acct.Principal.IsGTE(amount) {
		return errors.Wrapf(ErrInsufficientBalance, "%s exceeds %s", amount, acct.Principal)
	}
	left, err := acct.Principal.Subtract(amount)
	if err != nil {
		return err
	}
	acct.Principal = left

	// nothing was written so far, a rejected burn must not realize
	// interest into the supply
	if err := c.addSupply(db, earned); err != nil {
		return err
	}
	// the account record stays, keeping its rate lock
	if _, err := c.accounts.Put(db, user, &acct); err != nil {
		return errors.Wrap(err, "account")
	}
	return c.addSupply(db, amount.Negative())
}

// BurnAll destroys the whole settled balance of the account and
// returns the burned amount. The amount is resolved against the
// freshly settled balance, never a caller snapshot, so not a unit is
// left behind or fabricated. A missing account burns a zero amount.
func (c Controller) BurnAll(db tidemark.KVStore, now tidemark.UnixTime, user tidemark.Address) (coin.Coin, error) {
	var acct Account
	switch err := c.accounts.One(db, user, &acct); {
	case err == nil:
		// continue below
	case errors.ErrNotFound.Is(err):
		conf, err := loadConfig(db)
		if err != nil {
			return coin.Coin{}, err
		}
		return coin.Coin{Ticker: conf.Ticker}, nil
	default:
		return coin.Coin{}, errors.Wrap(err, "account")
	}

	earned, err := c.settle(&acct, now)
	if err != nil {
		return coin.Coin{}, err
	}
	if err := c.addSupply(db, earned); err != nil {
		return coin.Coin{}, err
	}

	burned := acct.Principal
	acct.Principal = coin.Coin{Ticker: burned.Ticker}
	if _, err := c.accounts.Put(db, user, &acct); err != nil {
		return coin.Coin{}, errors.Wrap(err, "account")
	}
	if err := c.addSupply(db, burned.Negative()); err != nil {
		return coin.Coin{}, err
	}
	return burned, nil
}

// Move transfers the amount between two accounts on this ledger.
// Both sides are settled first. A destination without an account
// record inherits the sender's locked rate, an existing record (even
// at zero principal) keeps its own lock.
func (c Controller) Move(db tidemark.KVStore, now tidemark.UnixTime, src, dest tidemark.Address, amount coin.Coin) error {
	if err := c.checkAmount(db, amount); err != nil {
		return err
	}

	var sender Account
	if err := c.accounts.One(db, src, &sender); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(ErrInsufficientBalance, "no account %s", src)
		}
		return errors.Wrap(err, "sender")
	}
	senderEarned, err := c.settle(&sender, now)
	if err != nil {
		return err
	}
	if !sender.Principal.IsGTE(amount) {
		return errors.Wrapf(ErrInsufficientBalance, "%s exceeds %s", amount, sender.Principal)
	}
	left, err := sender.Principal.Subtract(amount)
	if err != nil {
		return err
	}
	sender.Principal = left

	var receiver Account
	var receiverEarned coin.Coin
	switch err := c.accounts.One(db, dest, &receiver); {
	case err == nil:
		receiverEarned, err = c.settle(&receiver, now)
		if err != nil {
			return err
		}
	case errors.ErrNotFound.Is(err):
		receiver = Account{
			Principal:  coin.Coin{Ticker: amount.Ticker},
			LockedRate: sender.LockedRate,
			UpdatedAt:  now,
		}
	default:
		return errors.Wrap(err, "receiver")
	}

	total, err := receiver.Principal.Add(amount)
	if err != nil {
		return err
	}
	receiver.Principal = total

	// all checks passed, only now is anything persisted
	if err := c.addSupply(db, senderEarned); err != nil {
		return err
	}
	if err := c.addSupply(db, receiverEarned); err != nil {
		return err
	}
	if _, err := c.accounts.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "sender")
	}
	if _, err := c.accounts.Put(db, dest, &receiver); err != nil {
		return errors.Wrap(err, "receiver")
	}
	return nil
}

// LoadAccount returns the raw account record (not settled).
func (c Controller) LoadAccount(db tidemark.ReadOnlyKVStore, user tidemark.Address) (Account, error) {
	var acct Account
	err := c.accounts.One(db, user, &acct)
	return acct, err
}

// TotalSupply returns the total of all settled principals.
func (c Controller) TotalSupply(db tidemark.ReadOnlyKVStore) (coin.Coin, error) {
	var s Supply
	switch err := c.supply.One(db, singletonKey, &s); {
	case err == nil:
		return s.Total, nil
	case errors.ErrNotFound.Is(err):
		conf, err := loadConfig(db)
		if err != nil {
			return coin.Coin{}, err
		}
		return coin.Coin{Ticker: conf.Ticker}, nil
	default:
		return coin.Coin{}, errors.Wrap(err, "supply")
	}
}

// settle realizes the interest earned since the last update against
// the old principal and old timestamp, then advances the timestamp.
// Returns the realized interest so the caller can account for it in
// the supply. Must be called before any mutation of the account.
func (c Controller) settle(acct *Account, now tidemark.UnixTime) (coin.Coin, error) {
	earned, err := interest(acct.Principal, acct.LockedRate, acct.UpdatedAt, now)
	if err != nil {
		return coin.Coin{}, err
	}
	total, err := acct.Principal.Add(earned)
	if err != nil {
		return coin.Coin{}, err
	}
	acct.Principal = total
	acct.UpdatedAt = now
	return earned, nil
}

// interest computes principal * rate * elapsed, truncated toward
// zero. Anything smaller than the smallest coin unit is dropped, a
// unit is never fabricated.
func interest(principal coin.Coin, rate tidemark.Rate, since, now tidemark.UnixTime) (coin.Coin, error) {
	if now < since {
		return coin.Coin{}, errors.Wrapf(errors.ErrState, "clock regression: %s before %s", now, since)
	}
	elapsed := int64(now - since)
	if elapsed == 0 || rate.Numerator == 0 || principal.IsZero() {
		return coin.Coin{Ticker: principal.Ticker}, nil
	}

	factor, err := mulInt64(int64(rate.Numerator), elapsed)
	if err != nil {
		return coin.Coin{}, err
	}
	gross, err := principal.Multiply(factor)
	if err != nil {
		return coin.Coin{}, err
	}
	earned, _, err := gross.Divide(int64(rate.Denominator))
	if err != nil {
		return coin.Coin{}, err
	}
	return earned, nil
}

// mulInt64 multiplies with overflow detection
func mulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	res := a * b
	if res/b != a {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d", a, b)
	}
	return res, nil
}

// checkAmount ensures the amount is positive and denominated in the
// ledger's configured ticker.
func (c Controller) checkAmount(db tidemark.ReadOnlyKVStore, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return err
	}
	if amount.Ticker != conf.Ticker {
		return errors.Wrapf(errors.ErrCurrency, "%q not allowed, ledger uses %q", amount.Ticker, conf.Ticker)
	}
	return nil
}

// addSupply moves the total supply by the given delta. Pass a
// negative delta to account for burns.
func (c Controller) addSupply(db tidemark.KVStore, delta coin.Coin) error {
	if delta.IsZero() {
		return nil
	}
	var s Supply
	switch err := c.supply.One(db, singletonKey, &s); {
	case err == nil:
		// continue below
	case errors.ErrNotFound.Is(err):
		s = Supply{Total: coin.Coin{Ticker: delta.Ticker}}
	default:
		return errors.Wrap(err, "supply")
	}
	total, err := s.Total.Add(delta)
	if err != nil {
		return err
	}
	s.Total = total
	if _, err := c.supply.Put(db, singletonKey, &s); err != nil {
		return errors.Wrap(err, "supply")
	}
	return nil
}

func loadConfig(db tidemark.ReadOnlyKVStore) (Config, error) {
	var conf Config
	if err := gconf.Load(db, "accrual", &conf); err != nil {
		return conf, errors.Wrap(err, "configuration")
	}
	return conf, nil
}
