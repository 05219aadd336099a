package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/tidetest"
)

func TestUpdateRateHandler(t *testing.T) {
	ownerCond := tidemark.NewCondition("sigs", "ed25519", []byte("ledger-owner"))
	stranger := tidetest.NewCondition()

	cases := map[string]struct {
		signer   tidemark.Condition
		msg      tidemark.Msg
		wantErr  *errors.Error
		wantRate tidemark.Rate
	}{
		"owner can lower the rate": {
			signer:   ownerCond,
			msg:      &UpdateRateMsg{Rate: rt(1, 40)},
			wantRate: rt(1, 40),
		},
		"stranger cannot": {
			signer:  stranger,
			msg:     &UpdateRateMsg{Rate: rt(1, 40)},
			wantErr: errors.ErrUnauthorized,
		},
		"owner cannot raise the rate": {
			signer:  ownerCond,
			msg:     &UpdateRateMsg{Rate: rt(1, 10)},
			wantErr: ErrRateIncrease,
		},
		"malformed rate": {
			signer:  ownerCond,
			msg:     &UpdateRateMsg{Rate: tidemark.Rate{Numerator: 1}},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db, control := newLedgerDB(t, rt(1, 20))
			auth := &tidetest.Auth{Signer: tc.signer}

			reg := registry{}
			RegisterRoutes(reg, auth, control)
			handler := reg[pathUpdateRate]

			ctx := tidemark.WithBlockTime(context.Background(), t0.Add(time.Second).Time())
			tx := &tidetest.Tx{Msg: tc.msg}

			res, err := handler.Deliver(ctx, db, tx)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, res.Tags, 1)
			assert.Equal(t, []byte("accrual:rate"), res.Tags[0].Key)

			got, err := control.CurrentRate(db)
			require.NoError(t, err)
			assert.True(t, got.Equals(tc.wantRate))
		})
	}
}

func TestMoveHandler(t *testing.T) {
	aliceCond := tidetest.NewCondition()
	alice := aliceCond.Address()
	bob := tidetest.NewCondition().Address()

	db, control := newLedgerDB(t, rt(1, 20))
	require.NoError(t, control.Mint(db, t0, alice, tide(1000), rt(1, 20)))

	reg := registry{}
	RegisterRoutes(reg, &tidetest.Auth{Signer: aliceCond}, control)
	handler := reg[pathMove]

	ctx := tidemark.WithBlockTime(context.Background(), t0.Time())

	// bob did not sign, he cannot move alice's funds either way
	tx := &tidetest.Tx{Msg: &MoveMsg{Source: bob, Destination: alice, Amount: tide(1)}}
	_, err := handler.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	tx = &tidetest.Tx{Msg: &MoveMsg{Source: alice, Destination: bob, Amount: tide(400)}}
	_, err = handler.Check(ctx, db, tx)
	require.NoError(t, err)
	_, err = handler.Deliver(ctx, db, tx)
	require.NoError(t, err)

	got, err := control.Balance(db, t0, bob)
	require.NoError(t, err)
	assert.True(t, got.Equals(tide(400)), "got %s", got)
}

// registry collects registered handlers by path
type registry map[string]tidemark.Handler

func (r registry) Handle(path string, h tidemark.Handler) {
	r[path] = h
}
