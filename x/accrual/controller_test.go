package accrual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/gconf"
	"github.com/tidemark-io/tidemark/store"
	"github.com/tidemark-io/tidemark/tidetest"
)

const ticker = "TIDE"

var (
	t0    = tidemark.UnixTime(1500)
	owner = tidemark.NewCondition("sigs", "ed25519", []byte("ledger-owner")).Address()
)

func newLedgerDB(t testing.TB, rate tidemark.Rate) (tidemark.CacheableKVStore, Controller) {
	t.Helper()
	db := store.MemStore()

	conf := Config{Owner: owner, Ticker: ticker}
	require.NoError(t, gconf.Save(db, "accrual", &conf))

	control := NewController()
	state := RateState{Rate: rate, UpdatedAt: t0}
	_, err := NewRateStateBucket().Put(db, singletonKey, &state)
	require.NoError(t, err)
	return db, control
}

func rt(num, denom uint32) tidemark.Rate {
	return tidemark.Rate{Numerator: num, Denominator: denom}
}

func tide(whole int64) coin.Coin {
	return coin.NewCoin(whole, 0, ticker)
}

func TestLinearAccrual(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	// the canonical scenario: 100 000 at 5% per second
	require.NoError(t, control.Mint(db, t0, alice, tide(100000), rt(1, 20)))

	got, err := control.Balance(db, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(100000)), "got %s", got)

	got, err = control.Balance(db, t0.Add(time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(105000)), "got %s", got)

	// linear, not compounding
	got, err = control.Balance(db, t0.Add(20*time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(200000)), "got %s", got)
}

func TestBalanceIsMonotonic(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(7), rt(1, 20)))

	prev, err := control.Balance(db, t0, alice)
	require.NoError(t, err)
	for i := 1; i < 10; i++ {
		got, err := control.Balance(db, t0.Add(time.Duration(i)*time.Second), alice)
		require.NoError(t, err)
		assert.True(t, got.IsGTE(prev), "%s < %s", got, prev)
		prev = got
	}
}

func TestBalanceMissingAccount(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))

	got, err := control.Balance(db, t0, tidetest.NewCondition().Address())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	assert.Equal(t, ticker, got.Ticker)
}

func TestBalanceNeverMutates(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))
	_, err := control.Balance(db, t0.Add(5*time.Second), alice)
	require.NoError(t, err)

	acct, err := control.LoadAccount(db, alice)
	require.NoError(t, err)
	assert.True(t, acct.Principal.Equals(tide(100)))
	assert.Equal(t, t0, acct.UpdatedAt)
}

func TestMintSettlesBeforeRateOverwrite(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100000), rt(1, 20)))

	// ten seconds of 5% interest must be realized at the old rate
	// before the new lock takes effect
	require.NoError(t, control.Mint(db, t0.Add(10*time.Second), alice, tide(1), rt(1, 100)))

	acct, err := control.LoadAccount(db, alice)
	require.NoError(t, err)
	assert.True(t, acct.Principal.Equals(tide(150001)), "got %s", acct.Principal)
	assert.True(t, acct.LockedRate.Equals(rt(1, 100)))

	// from here on the account accrues at 1%
	got, err := control.Balance(db, t0.Add(110*time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(300002)), "got %s", got)
}

func TestSetRateOnlyLowers(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))

	cases := map[string]struct {
		rate    tidemark.Rate
		wantErr *errors.Error
	}{
		"lower is fine":      {rate: rt(1, 25)},
		"equal is rejected":  {rate: rt(1, 20), wantErr: ErrRateIncrease},
		"higher is rejected": {rate: rt(1, 10), wantErr: ErrRateIncrease},
		"equivalent fraction is rejected": {
			rate: rt(2, 40), wantErr: ErrRateIncrease,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := db.CacheWrap()
			defer db.Discard()

			err := control.SetRate(db, t0.Add(time.Second), tc.rate)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			got, err := control.CurrentRate(db)
			require.NoError(t, err)
			assert.True(t, got.Equals(tc.rate))
		})
	}
}

func TestSetRateLeavesLocksUntouched(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(1000), rt(1, 20)))
	require.NoError(t, control.SetRate(db, t0.Add(time.Second), rt(1, 50)))

	// alice still accrues at the rate locked at mint time
	got, err := control.Balance(db, t0.Add(2*time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(1100)), "got %s", got)
}

func TestBurnAgainstSettledBalance(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))

	// more than the principal, but within the settled balance
	require.NoError(t, control.Burn(db, t0.Add(time.Second), alice, tide(105)))

	got, err := control.Balance(db, t0.Add(time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "got %s", got)

	// the emptied account keeps its rate lock
	acct, err := control.LoadAccount(db, alice)
	require.NoError(t, err)
	assert.True(t, acct.LockedRate.Equals(rt(1, 20)))
}

func TestBurnInsufficientBalance(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))

	err := control.Burn(db, t0, alice, tide(101))
	assert.True(t, ErrInsufficientBalance.Is(err), "got %+v", err)

	// failed burn must not mutate the account
	got, err := control.Balance(db, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(100)))

	err = control.Burn(db, t0, tidetest.NewCondition().Address(), tide(1))
	assert.True(t, ErrInsufficientBalance.Is(err), "got %+v", err)
}

func TestFailedBurnLeavesSupplyUntouched(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))

	// the settled balance after one second is 105, asking for more
	// must fail without realizing the pending interest
	err := control.Burn(db, t0.Add(time.Second), alice, tide(200))
	assert.True(t, ErrInsufficientBalance.Is(err), "got %+v", err)

	supply, err := control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(100)), "got %s", supply)

	acct, err := control.LoadAccount(db, alice)
	require.NoError(t, err)
	assert.True(t, acct.Principal.Equals(tide(100)), "got %s", acct.Principal)
	assert.Equal(t, t0, acct.UpdatedAt)

	// a failed move is just as clean
	err = control.Move(db, t0.Add(time.Second), alice, tidetest.NewCondition().Address(), tide(200))
	assert.True(t, ErrInsufficientBalance.Is(err), "got %+v", err)

	supply, err = control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(100)), "got %s", supply)
}

func TestBurnAllRoundTrip(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100000), rt(1, 20)))

	burned, err := control.BurnAll(db, t0.Add(time.Second), alice)
	require.NoError(t, err)
	assert.True(t, burned.Equals(tide(105000)), "got %s", burned)

	got, err := control.Balance(db, t0.Add(time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "got %s", got)

	supply, err := control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.IsZero(), "got %s", supply)
}

func TestBurnAllMissingAccount(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))

	burned, err := control.BurnAll(db, t0, tidetest.NewCondition().Address())
	require.NoError(t, err)
	assert.True(t, burned.IsZero())
	assert.Equal(t, ticker, burned.Ticker)
}

func TestMoveInheritsRateOnFreshAccount(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()
	bob := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(1000), rt(1, 20)))
	require.NoError(t, control.Move(db, t0.Add(2*time.Second), alice, bob, tide(500)))

	// alice settled 100 interest before sending
	got, err := control.Balance(db, t0.Add(2*time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(600)), "got %s", got)

	// bob inherited the sender's lock
	acct, err := control.LoadAccount(db, bob)
	require.NoError(t, err)
	assert.True(t, acct.LockedRate.Equals(rt(1, 20)))

	got, err = control.Balance(db, t0.Add(4*time.Second), bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(550)), "got %s", got)
}

func TestMoveKeepsExistingLock(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()
	bob := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(1000), rt(1, 20)))
	require.NoError(t, control.Mint(db, t0, bob, tide(40), rt(1, 40)))

	// drain bob to zero, the record must still keep its lock
	_, err := control.BurnAll(db, t0, bob)
	require.NoError(t, err)

	require.NoError(t, control.Move(db, t0, alice, bob, tide(500)))

	acct, err := control.LoadAccount(db, bob)
	require.NoError(t, err)
	assert.True(t, acct.LockedRate.Equals(rt(1, 40)), "got %s", &acct.LockedRate)
}

func TestMoveInsufficientBalance(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()
	bob := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))

	err := control.Move(db, t0, alice, bob, tide(101))
	assert.True(t, ErrInsufficientBalance.Is(err), "got %+v", err)

	// nothing moved
	got, err := control.Balance(db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestSupplyTracksMintAndBurn(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()
	bob := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))
	require.NoError(t, control.Mint(db, t0, bob, tide(50), rt(1, 20)))

	supply, err := control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(150)), "got %s", supply)

	require.NoError(t, control.Burn(db, t0, bob, tide(30)))
	supply, err = control.TotalSupply(db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(120)), "got %s", supply)

	// realized interest counts into the supply
	require.NoError(t, control.Burn(db, t0.Add(time.Second), alice, tide(5)))
	supply, err = control.TotalSupply(db)
	require.NoError(t, err)
	// alice settled 100/20=5 interest, then burned 5
	assert.True(t, supply.Equals(tide(120)), "got %s", supply)
}

func TestClockRegressionRejected(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	require.NoError(t, control.Mint(db, t0, alice, tide(100), rt(1, 20)))

	_, err := control.Balance(db, t0.Add(-time.Second), alice)
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)

	err = control.Mint(db, t0.Add(-time.Second), alice, tide(1), rt(1, 20))
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)

	// state is intact
	got, err := control.Balance(db, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(100)))
}

func TestMintRejectsWrongTicker(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	err := control.Mint(db, t0, alice, coin.NewCoin(1, 0, "DOGE"), rt(1, 20))
	assert.True(t, errors.ErrCurrency.Is(err), "got %+v", err)
}

func TestInterestTruncatesDown(t *testing.T) {
	db, control := newLedgerDB(t, rt(1, 20))
	alice := tidetest.NewCondition().Address()

	// 1 TIDE at 1/3 per second earns 333333333 frac after a second,
	// the remaining third of a frac is dropped
	require.NoError(t, control.Mint(db, t0, alice, tide(1), rt(1, 3)))

	got, err := control.Balance(db, t0.Add(time.Second), alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(coin.NewCoin(1, 333333333, ticker)), "got %s", got)
}
