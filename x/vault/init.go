package vault

import (
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ tidemark.Initializer = (*Initializer)(nil)

// FromGenesis will parse the vault configuration from the genesis and
// save it in the database.
func (*Initializer) FromGenesis(opts tidemark.Options, db tidemark.KVStore) error {
	var conf Config
	return gconf.InitConfig(db, opts, "vault", &conf)
}
