package x

import (
	"github.com/tidemark-io/tidemark"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding one scheme for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(tidemark.Context) []tidemark.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(tidemark.Context, tidemark.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx tidemark.Context) []tidemark.Condition {
	var res []tidemark.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx tidemark.Context, addr tidemark.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx tidemark.Context, auth Authenticator) []tidemark.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]tidemark.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx tidemark.Context, auth Authenticator) tidemark.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx tidemark.Context, auth Authenticator, required []tidemark.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx tidemark.Context, auth Authenticator, required []tidemark.Condition) bool {
	perms := auth.GetConditions(ctx)
	for _, req := range required {
		var found bool
		for _, perm := range perms {
			if req.Equals(perm) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
