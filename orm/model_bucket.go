package orm

import (
	"reflect"

	"github.com/tidemark-io/tidemark"
	"github.com/tidemark-io/tidemark/errors"
)

// ModelBucket is implemented by buckets that operates on a single
// model type.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is
	// done by the primary index key. Result is loaded into given
	// destination model.
	// This method returns ErrNotFound if an entity does not exist.
	One(db tidemark.ReadOnlyKVStore, key []byte, dest Model) error

	// Put saves given model in the database. Before inserting into
	// database, model is validated using its Validate method.
	// If the key is nil, an ID is generated from the bucket sequence.
	// Returns the key under which the model was stored.
	Put(db tidemark.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the
	// database. It returns ErrNotFound if an entity with given key
	// does not exist.
	Delete(db tidemark.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key value
	// exists. It returns ErrNotFound if no entity can be found.
	Has(db tidemark.ReadOnlyKVStore, key []byte) error

	// Iterate walks all entities of the bucket in ascending key
	// order, calling fn with each key (without the bucket prefix)
	// and loaded model. Iteration stops early when fn returns an
	// error, and that error is returned.
	Iterate(db tidemark.ReadOnlyKVStore, fn func(key []byte, m Model) error) error
}

// NewModelBucket returns a ModelBucket instance. The given model type
// is used to validate and reflect all the data written to or read
// from the bucket.
func NewModelBucket(name string, m Model) ModelBucket {
	kt := reflect.TypeOf(m)
	if kt.Kind() != reflect.Ptr {
		panic("model must be implemented by a pointer receiver")
	}
	return &modelBucket{
		prefix: []byte(name + ":"),
		idSeq:  NewSequence(name, "id"),
		model:  kt.Elem(),
	}
}

type modelBucket struct {
	prefix []byte
	idSeq  Sequence

	// model is referencing the structure type (not the pointer)
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (b *modelBucket) dbKey(key []byte) []byte {
	// build in a fresh slice, appending to the shared prefix would
	// alias its backing array across calls
	out := make([]byte, 0, len(b.prefix)+len(key))
	out = append(out, b.prefix...)
	return append(out, key...)
}

func (b *modelBucket) One(db tidemark.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	raw := db.Get(b.dbKey(key))
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in bucket %s", dest, b.prefix)
	}

	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "bucket %s model", b.prefix)
	}
	return nil
}

func (b *modelBucket) Put(db tidemark.KVStore, key []byte, m Model) ([]byte, error) {
	mTp := reflect.TypeOf(m)
	if mTp.Kind() != reflect.Ptr {
		return nil, errors.Wrap(errors.ErrType, "model destination must be a pointer")
	}
	if b.model != mTp.Elem() {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T type in this bucket", m)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		key = b.idSeq.NextVal(db)
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal model")
	}
	db.Set(b.dbKey(key), raw)
	return key, nil
}

func (b *modelBucket) Delete(db tidemark.KVStore, key []byte) error {
	if err := b.Has(db, key); err != nil {
		return err
	}
	db.Delete(b.dbKey(key))
	return nil
}

func (b *modelBucket) Has(db tidemark.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if !db.Has(b.dbKey(key)) {
		return errors.ErrNotFound
	}
	return nil
}

func (b *modelBucket) Iterate(db tidemark.ReadOnlyKVStore, fn func(key []byte, m Model) error) error {
	iter := db.Iterator(b.prefix, prefixEnd(b.prefix))
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		m := reflect.New(b.model).Interface().(Model)
		if err := m.Unmarshal(iter.Value()); err != nil {
			return errors.Wrapf(err, "bucket %s model", b.prefix)
		}
		key := iter.Key()[len(b.prefix):]
		if err := fn(key, m); err != nil {
			return err
		}
	}
	return nil
}

// prefixEnd returns the lowest key strictly greater than every key
// that begins with the given prefix
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	// all 0xff, open ended range
	return nil
}
