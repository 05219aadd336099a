package accrual

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/store"
	"github.com/tidemark-io/tidemark/tidetest"
)

func TestGenesisInitializer(t *testing.T) {
	alice := tidetest.NewCondition().Address()
	bob := tidetest.NewCondition().Address()

	genesis := fmt.Sprintf(`{
		"conf": {
			"accrual": {"owner": "hex:%s", "ticker": "TIDE"}
		},
		"accrual": {
			"rate": "1/20",
			"genesis_time": 1500,
			"accounts": [
				{"address": "hex:%s", "principal": "100.5 TIDE"},
				{"address": "hex:%s", "principal": "10 TIDE", "rate": "1/40"}
			]
		}
	}`, owner, alice, bob)

	var opts tidemark.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, db))

	control := NewController()

	rate, err := control.CurrentRate(db)
	require.NoError(t, err)
	assert.True(t, rate.Equals(rt(1, 20)))

	// at the genesis time the balance is exactly the principal, no
	// interest is fabricated for the time before the chain existed
	got, err := control.Balance(db, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(coin.NewCoin(100, 500000000, "TIDE")), "got %s", got)

	// explicit per account rate wins over the ledger rate
	acct, err := control.LoadAccount(db, bob)
	require.NoError(t, err)
	assert.True(t, acct.LockedRate.Equals(rt(1, 40)))
	assert.Equal(t, t0, acct.UpdatedAt)

	supply, err := control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(coin.NewCoin(110, 500000000, "TIDE")), "got %s", supply)
}
