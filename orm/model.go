package orm

import (
	"github.com/tidemark-io/tidemark"
)

// Model is implemented by any entity that can be stored in a bucket.
// It must be serializable and self-validating.
type Model interface {
	tidemark.Persistent
	Validate() error
}
