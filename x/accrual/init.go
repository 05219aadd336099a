package accrual

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ tidemark.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial ledger state from the genesis and
// save it in the database.
func (*Initializer) FromGenesis(opts tidemark.Options, db tidemark.KVStore) error {
	var conf Config
	if err := gconf.InitConfig(db, opts, "accrual", &conf); err != nil {
		return err
	}

	var state struct {
		Rate        tidemark.Rate     `json:"rate"`
		GenesisTime tidemark.UnixTime `json:"genesis_time"`
		Accounts    []struct {
			Address   tidemark.Address `json:"address"`
			Principal coin.Coin        `json:"principal"`
			Rate      *tidemark.Rate   `json:"rate"`
		} `json:"accounts"`
	}
	if err := opts.ReadOptions("accrual", &state); err != nil {
		return errors.Wrap(err, "accrual genesis")
	}
	if err := state.Rate.Validate(); err != nil {
		return errors.Field("Rate", err, "accrual genesis")
	}

	rates := NewRateStateBucket()
	rstate := RateState{Rate: state.Rate, UpdatedAt: state.GenesisTime}
	if _, err := rates.Put(db, singletonKey, &rstate); err != nil {
		return errors.Wrap(err, "rate state")
	}

	accounts := NewAccountBucket()
	total := coin.Coin{Ticker: conf.Ticker}
	for i, a := range state.Accounts {
		locked := state.Rate
		if a.Rate != nil {
			locked = *a.Rate
		}
		// accounts start accruing at the genesis time, not at the
		// epoch, so no interest is fabricated for the time before the
		// chain existed
		acct := Account{
			Principal:  a.Principal,
			LockedRate: locked,
			UpdatedAt:  state.GenesisTime,
		}
		if _, err := accounts.Put(db, a.Address, &acct); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		sum, err := total.Add(a.Principal)
		if err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		total = sum
	}

	supply := NewSupplyBucket()
	if _, err := supply.Put(db, singletonKey, &Supply{Total: total}); err != nil {
		return errors.Wrap(err, "supply")
	}
	return nil
}
