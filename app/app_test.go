package app

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/store/iavl"
	"github.com/tidemark-io/tidemark/tidetest"
	"github.com/tidemark-io/tidemark/x/accrual"
)

// blocks start at the genesis time, so no interest accrues unless a
// test advances the clock
var t0 = tidemark.UnixTime(1500)

func tide(whole int64) coin.Coin {
	return coin.NewCoin(whole, 0, "TIDE")
}

func newApp(t testing.TB, signer tidemark.Condition, funded tidemark.Address) (*Application, accrual.Controller) {
	t.Helper()

	owner := tidetest.NewCondition().Address()
	genesis := fmt.Sprintf(`{
		"conf": {
			"accrual": {"owner": "hex:%s", "ticker": "TIDE"}
		},
		"accrual": {
			"rate": "1/20",
			"genesis_time": 1500,
			"accounts": [{"address": "hex:%s", "principal": "1000 TIDE"}]
		}
	}`, owner, funded)
	var opts tidemark.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	control := accrual.NewController()
	router := NewRouter()
	accrual.RegisterRoutes(router, &tidetest.Auth{Signer: signer}, control)
	stack := ChainDecorators(
		LoggingDecorator{},
		SavepointDecorator{},
	).WithHandler(router)

	a, err := NewApplication("demo", iavl.MockCommitStore(), stack, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, a.InitGenesis(opts, &accrual.Initializer{}))
	return a, control
}

func TestApplicationLifecycle(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()

	a, control := newApp(t, aliceCond, alice)

	a.BeginBlock(1, t0.Time())

	tx := &tidetest.Tx{Msg: &accrual.MoveMsg{Source: alice, Destination: bob, Amount: tide(400)}}
	_, err := a.CheckTx(tx)
	require.NoError(t, err)
	_, err = a.DeliverTx(tx)
	require.NoError(t, err)

	id := a.Commit()
	assert.EqualValues(t, 2, id.Version)
	assert.NotEmpty(t, id.Hash)

	// committed state is visible in the next block
	a.BeginBlock(2, t0.Time())
	_, err = a.DeliverTx(tx)
	require.NoError(t, err)
	a.Commit()

	view := a.store.CacheWrap()
	defer view.Discard()
	got, err := control.Balance(view, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(800)), "got %s", got)
}

func TestApplicationRollsBackFailedTx(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()

	a, control := newApp(t, aliceCond, alice)

	a.BeginBlock(1, t0.Time())

	tx := &tidetest.Tx{Msg: &accrual.MoveMsg{Source: alice, Destination: bob, Amount: tide(5000)}}
	_, err := a.DeliverTx(tx)
	assert.True(t, accrual.ErrInsufficientBalance.Is(err), "got %+v", err)
	a.Commit()

	view := a.store.CacheWrap()
	defer view.Discard()
	got, err := control.Balance(view, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(1000)), "got %s", got)
	_, err = control.LoadAccount(view, bob)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestApplicationCheckDoesNotPersist(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()

	a, control := newApp(t, aliceCond, alice)

	a.BeginBlock(1, t0.Time())
	tx := &tidetest.Tx{Msg: &accrual.MoveMsg{Source: alice, Destination: bob, Amount: tide(400)}}
	_, err := a.CheckTx(tx)
	require.NoError(t, err)
	a.Commit()

	view := a.store.CacheWrap()
	defer view.Discard()
	got, err := control.Balance(view, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(1000)), "got %s", got)
}

func TestApplicationRejectsDoubleGenesis(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	a, _ := newApp(t, aliceCond, aliceCond.Address())

	err := a.InitGenesis(tidemark.Options{}, &accrual.Initializer{})
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)
}

func TestApplicationNoOpenBlock(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	a, _ := newApp(t, aliceCond, aliceCond.Address())

	tx := &tidetest.Tx{Msg: &accrual.UpdateRateMsg{Rate: tidemark.Rate{Numerator: 1, Denominator: 40}}}
	_, err := a.DeliverTx(tx)
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)

	// after a commit the block is closed again
	a.BeginBlock(1, t0.Time().Add(time.Second))
	a.Commit()
	_, err = a.CheckTx(tx)
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)
}
