//nolint
package store

import "github.com/tidemark-io/tidemark"

// Move references for all storage types into this package
// for shorter names everywhere

type KVStore = tidemark.KVStore
type ReadOnlyKVStore = tidemark.ReadOnlyKVStore
type SetDeleter = tidemark.SetDeleter
type Batch = tidemark.Batch
type Iterator = tidemark.Iterator
type Model = tidemark.Model
type CacheableKVStore = tidemark.CacheableKVStore
type KVCacheWrap = tidemark.KVCacheWrap
type CommitKVStore = tidemark.CommitKVStore
type CommitID = tidemark.CommitID
