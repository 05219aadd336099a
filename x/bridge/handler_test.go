package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/store"
	"github.com/tidemark-io/tidemark/tidetest"
	"github.com/tidemark-io/tidemark/x"
	"github.com/tidemark-io/tidemark/x/accrual"
)

var t0 = tidemark.UnixTime(1500)

// ledger is a self contained chain instance for tests, initialized
// from genesis and wired to a shared transport.
type ledger struct {
	db      tidemark.CacheableKVStore
	control accrual.Controller
	reg     registry
}

// newLedger builds a ledger from genesis. The routes argument is the
// raw JSON of the bridge route table.
func newLedger(t testing.TB, id, rate, routes string, auth x.Authenticator, tr Transport) *ledger {
	t.Helper()

	owner := tidetest.NewCondition().Address()
	genesis := fmt.Sprintf(`{
		"conf": {
			"accrual": {"owner": "hex:%s", "ticker": "TIDE"},
			"bridge": {"ledger_id": %q}
		},
		"accrual": {"rate": %q},
		"bridge": {"routes": %s}
	}`, owner, id, rate, routes)

	var opts tidemark.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var accIni accrual.Initializer
	require.NoError(t, accIni.FromGenesis(opts, db))
	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, db))

	control := accrual.NewController()
	reg := registry{}
	RegisterRoutes(reg, auth, control, tr)
	return &ledger{db: db, control: control, reg: reg}
}

// endpoint exposes the inbound handler as a transport delivery target.
func (l *ledger) endpoint(ctx tidemark.Context) DeliverFunc {
	return func(env Envelope, sig []byte) error {
		tx := &tidetest.Tx{Msg: &InboundMsg{Envelope: env, Signature: sig}}
		_, err := l.reg[pathInbound].Deliver(ctx, l.db, tx)
		return err
	}
}

func tide(whole int64) coin.Coin {
	return coin.NewCoin(whole, 0, "TIDE")
}

func rt(num, denom uint32) tidemark.Rate {
	return tidemark.Rate{Numerator: num, Denominator: denom}
}

func TestCrossLedgerRoundTrip(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	alpha := newLedger(t, "alpha", "1/20", `[{"ledger": "beta"}]`,
		&tidetest.Auth{Signer: aliceCond}, tr)
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`,
		&tidetest.Auth{}, tr)

	require.NoError(t, tr.RegisterLedger("alpha", nil))
	require.NoError(t, tr.RegisterLedger("beta", beta.endpoint(ctx)))

	// alice holds a rate lock that matches neither ledger rate, it
	// must survive the crossing untouched
	require.NoError(t, alpha.control.Mint(alpha.db, t0, alice, tide(1000), rt(1, 40)))

	tx := &tidetest.Tx{Msg: &OutboundMsg{
		Source:            alice,
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(400),
	}}
	_, err := alpha.reg[pathOutbound].Check(ctx, alpha.db, tx)
	require.NoError(t, err)
	res, err := alpha.reg[pathOutbound].Deliver(ctx, alpha.db, tx)
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, []byte("bridge:outbound"), res.Tags[0].Key)

	got, err := alpha.control.Balance(alpha.db, t0, alice)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(600)), "got %s", got)

	supply, err := alpha.control.TotalSupply(alpha.db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(600)), "got %s", supply)

	acct, err := beta.control.LoadAccount(beta.db, bob)
	require.NoError(t, err)
	assert.True(t, acct.Principal.Equals(tide(400)), "got %s", acct.Principal)
	assert.True(t, acct.LockedRate.Equals(rt(1, 40)))

	supply, err = beta.control.TotalSupply(beta.db)
	require.NoError(t, err)
	assert.True(t, supply.Equals(tide(400)), "got %s", supply)
}

func TestOutboundChecks(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	stranger := tidetest.NewCondition()
	recipient := tidetest.NewCondition().Address()

	cases := map[string]struct {
		signer  tidemark.Condition
		source  tidemark.Address
		dest    string
		wantErr *errors.Error
	}{
		"no route configured": {
			signer:  aliceCond,
			source:  alice,
			dest:    "gamma",
			wantErr: ErrRouteNotConfigured,
		},
		"suspended route": {
			signer:  aliceCond,
			source:  alice,
			dest:    "frozen",
			wantErr: ErrRouteSuspended,
		},
		"source did not sign": {
			signer:  stranger,
			source:  alice,
			dest:    "beta",
			wantErr: errors.ErrUnauthorized,
		},
		"no account": {
			signer:  stranger,
			source:  stranger.Address(),
			dest:    "beta",
			wantErr: accrual.ErrInsufficientBalance,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			tr := NewLoopbackTransport()
			routes := `[{"ledger": "beta"}, {"ledger": "frozen", "suspended": true}]`
			alpha := newLedger(t, "alpha", "1/20", routes,
				&tidetest.Auth{Signer: tc.signer}, tr)
			require.NoError(t, tr.RegisterLedger("alpha", nil))
			require.NoError(t, alpha.control.Mint(alpha.db, t0, alice, tide(100), rt(1, 20)))

			ctx := tidemark.WithBlockTime(context.Background(), t0.Time())
			tx := &tidetest.Tx{Msg: &OutboundMsg{
				Source:            tc.source,
				DestinationLedger: tc.dest,
				Recipient:         recipient,
				Amount:            tide(10),
			}}
			_, err := alpha.reg[pathOutbound].Deliver(ctx, alpha.db, tx)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			// a rejected transfer must not touch the balance
			got, berr := alpha.control.Balance(alpha.db, t0, alice)
			require.NoError(t, berr)
			assert.True(t, got.Equals(tide(100)), "got %s", got)
		})
	}
}

func TestInboundRejectsForgedPool(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))
	require.NoError(t, tr.RegisterLedger("beta", beta.endpoint(ctx)))

	// properly signed by alpha's transport key, but claiming a pool
	// that is not the one the route pins down
	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("mallory"),
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	err := tr.Send(env)
	assert.True(t, ErrUnauthorizedSource.Is(err), "got %+v", err)

	_, err = beta.control.LoadAccount(beta.db, bob)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestInboundRejectsUnknownRoute(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("gamma", nil))
	require.NoError(t, tr.RegisterLedger("beta", beta.endpoint(ctx)))

	env := Envelope{
		SourceLedger:      "gamma",
		SourcePool:        PoolAddress("gamma"),
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	err := tr.Send(env)
	assert.True(t, ErrUnauthorizedSource.Is(err), "got %+v", err)
}

func TestInboundRejectsWrongDestination(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))
	// misrouted: the gamma endpoint is served by the beta ledger
	require.NoError(t, tr.RegisterLedger("gamma", beta.endpoint(ctx)))

	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("alpha"),
		DestinationLedger: "gamma",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	err := tr.Send(env)
	assert.True(t, ErrUnsupportedLedger.Is(err), "got %+v", err)
}

func TestInboundReplayRejected(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))

	var (
		capturedEnv Envelope
		capturedSig []byte
	)
	deliver := beta.endpoint(ctx)
	require.NoError(t, tr.RegisterLedger("beta", func(env Envelope, sig []byte) error {
		capturedEnv, capturedSig = env, sig
		return deliver(env, sig)
	}))

	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("alpha"),
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	require.NoError(t, tr.Send(env))

	got, err := beta.control.Balance(beta.db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(10)), "got %s", got)

	// replaying the captured envelope must not mint twice
	tx := &tidetest.Tx{Msg: &InboundMsg{Envelope: capturedEnv, Signature: capturedSig}}
	_, err = beta.reg[pathInbound].Deliver(ctx, beta.db, tx)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)

	got, err = beta.control.Balance(beta.db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(10)), "got %s", got)
}

func TestInboundCheckDoesNotConsume(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))

	// capture the envelope instead of delivering it, so the mempool
	// flow of check before deliver can be replayed by hand
	var (
		capturedEnv Envelope
		capturedSig []byte
	)
	require.NoError(t, tr.RegisterLedger("beta", func(env Envelope, sig []byte) error {
		capturedEnv, capturedSig = env, sig
		return nil
	}))

	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("alpha"),
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	require.NoError(t, tr.Send(env))

	tx := &tidetest.Tx{Msg: &InboundMsg{Envelope: capturedEnv, Signature: capturedSig}}

	// any number of checks may run before the delivery, none of them
	// may use up the envelope
	_, err := beta.reg[pathInbound].Check(ctx, beta.db, tx)
	require.NoError(t, err)
	_, err = beta.reg[pathInbound].Check(ctx, beta.db, tx)
	require.NoError(t, err)

	_, err = beta.reg[pathInbound].Deliver(ctx, beta.db, tx)
	require.NoError(t, err)

	got, err := beta.control.Balance(beta.db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(10)), "got %s", got)

	// once delivered, both check and deliver reject the envelope
	_, err = beta.reg[pathInbound].Check(ctx, beta.db, tx)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
	_, err = beta.reg[pathInbound].Deliver(ctx, beta.db, tx)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
}

func TestRepeatedTransfersBothDelivered(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	alpha := newLedger(t, "alpha", "1/20", `[{"ledger": "beta"}]`,
		&tidetest.Auth{Signer: aliceCond}, tr)
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`,
		&tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))
	require.NoError(t, tr.RegisterLedger("beta", beta.endpoint(ctx)))

	require.NoError(t, alpha.control.Mint(alpha.db, t0, alice, tide(100), rt(1, 20)))

	// same source, recipient and amount twice. The nonce keeps the
	// envelopes apart, so the second transfer must arrive as well.
	for i := 0; i < 2; i++ {
		tx := &tidetest.Tx{Msg: &OutboundMsg{
			Source:            alice,
			DestinationLedger: "beta",
			Recipient:         bob,
			Amount:            tide(10),
		}}
		_, err := alpha.reg[pathOutbound].Deliver(ctx, alpha.db, tx)
		require.NoError(t, err)
	}

	got, err := beta.control.Balance(beta.db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(20)), "got %s", got)
}

func TestInboundRejectsForgedSignature(t *testing.T) {
	bob := tidetest.NewCondition().Address()
	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	tr := NewLoopbackTransport()
	beta := newLedger(t, "beta", "1/100", `[{"ledger": "alpha"}]`, &tidetest.Auth{}, tr)
	require.NoError(t, tr.RegisterLedger("alpha", nil))

	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("alpha"),
		DestinationLedger: "beta",
		Recipient:         bob,
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	tx := &tidetest.Tx{Msg: &InboundMsg{Envelope: env, Signature: []byte("not a signature, 64 bytes of padding to match the length....")}}
	_, err := beta.reg[pathInbound].Deliver(ctx, beta.db, tx)
	assert.True(t, ErrUnauthorizedSource.Is(err), "got %+v", err)
}

func TestTransportDropsDuplicateSend(t *testing.T) {
	tr := NewLoopbackTransport()
	require.NoError(t, tr.RegisterLedger("alpha", nil))
	delivered := 0
	require.NoError(t, tr.RegisterLedger("beta", func(Envelope, []byte) error {
		delivered++
		return nil
	}))

	env := Envelope{
		SourceLedger:      "alpha",
		SourcePool:        PoolAddress("alpha"),
		DestinationLedger: "beta",
		Recipient:         tidetest.NewCondition().Address(),
		Amount:            tide(10),
		SenderRate:        rt(1, 20),
		Nonce:             1,
	}
	require.NoError(t, tr.Send(env))
	err := tr.Send(env)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
	assert.Equal(t, 1, delivered)
}

// registry collects registered handlers by path
type registry map[string]tidemark.Handler

func (r registry) Handle(path string, h tidemark.Handler) {
	r[path] = h
}
