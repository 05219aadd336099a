package tidetest

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"

	"github.com/tidemark-io/tidemark"
)

// NewCondition returns a condition for a freshly generated ed25519 key.
func NewCondition() tidemark.Condition {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return tidemark.NewCondition("sigs", "ed25519", pub)
}
