package x

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidemark-io/tidemark"
)

// fixedAuth is an Authenticator preloaded with conditions
type fixedAuth struct {
	signers []tidemark.Condition
}

var _ Authenticator = fixedAuth{}

func (a fixedAuth) GetConditions(tidemark.Context) []tidemark.Condition {
	return a.signers
}

func (a fixedAuth) HasAddress(ctx tidemark.Context, addr tidemark.Address) bool {
	for _, s := range a.signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

func TestChainAuth(t *testing.T) {
	ctx := context.Background()

	a := tidemark.NewCondition("sigs", "ed25519", []byte("alice"))
	b := tidemark.NewCondition("sigs", "ed25519", []byte("bob"))
	c := tidemark.NewCondition("custom", "type", []byte("carl"))

	auth := ChainAuth(
		fixedAuth{signers: []tidemark.Condition{a}},
		fixedAuth{},
		fixedAuth{signers: []tidemark.Condition{b, c}},
	)

	assert.Equal(t, []tidemark.Condition{a, b, c}, auth.GetConditions(ctx))
	assert.True(t, auth.HasAddress(ctx, b.Address()))
	assert.False(t, auth.HasAddress(ctx, tidemark.NewCondition("sigs", "ed25519", []byte("dave")).Address()))

	assert.Equal(t, a, MainSigner(ctx, auth))
	assert.Nil(t, MainSigner(ctx, ChainAuth()))

	assert.True(t, HasAllAddresses(ctx, auth, []tidemark.Address{a.Address(), c.Address()}))
	assert.False(t, HasAllAddresses(ctx, auth, []tidemark.Address{
		a.Address(),
		tidemark.NewCondition("sigs", "ed25519", []byte("dave")).Address(),
	}))

	assert.True(t, HasAllConditions(ctx, auth, []tidemark.Condition{b, c}))
	assert.False(t, HasAllConditions(ctx, auth, []tidemark.Condition{
		tidemark.NewCondition("sigs", "ed25519", []byte("dave")),
	}))
}
