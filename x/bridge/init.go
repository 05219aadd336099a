package bridge

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ tidemark.Initializer = (*Initializer)(nil)

// FromGenesis will parse the bridge configuration and the initial
// route table from the genesis and save them in the database.
func (*Initializer) FromGenesis(opts tidemark.Options, db tidemark.KVStore) error {
	var conf Config
	if err := gconf.InitConfig(db, opts, "bridge", &conf); err != nil {
		return err
	}

	var state struct {
		Routes []struct {
			Ledger    string `json:"ledger"`
			Suspended bool   `json:"suspended"`
		} `json:"routes"`
	}
	if err := opts.ReadOptions("bridge", &state); err != nil {
		return errors.Wrap(err, "bridge genesis")
	}

	routes := NewRouteBucket()
	for i, r := range state.Routes {
		if !validLedgerID(r.Ledger) {
			return errors.Wrapf(errors.ErrInput, "route #%d: invalid ledger id", i)
		}
		route := Route{
			Pool:      PoolAddress(r.Ledger),
			Suspended: r.Suspended,
		}
		if _, err := routes.Put(db, []byte(r.Ledger), &route); err != nil {
			return errors.Wrapf(err, "route #%d", i)
		}
	}
	return nil
}
