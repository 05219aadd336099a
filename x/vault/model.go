package vault

import (
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/orm"
)

var _ orm.Model = (*Reserve)(nil)
var _ orm.Model = (*Config)(nil)

// Validate ensures the reserve never goes negative.
func (r *Reserve) Validate() error {
	if err := r.Deposited.Validate(); err != nil {
		return errors.Field("Deposited", err, "invalid reserve")
	}
	if !r.Deposited.IsNonNegative() {
		return errors.Field("Deposited", errors.ErrAmount, "negative reserve")
	}
	return nil
}

// Validate ensures the vault configuration is usable.
func (c *Config) Validate() error {
	if err := c.Issuer.Validate(); err != nil {
		return errors.Field("Issuer", err, "invalid issuer address")
	}
	return nil
}

// NewReserveBucket returns a bucket for keeping reserves, keyed by
// the user address.
func NewReserveBucket() orm.ModelBucket {
	return orm.NewModelBucket("vaultres", &Reserve{})
}
