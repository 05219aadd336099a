package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidemark-io/tidemark/coin"
	"github.com/tidemark-io/tidemark/errors"
	"github.com/tidemark-io/tidemark/store"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	key, err := b.Put(db, []byte("c1"), coin.NewCoinp(5, 0, "TIDE"))
	require.NoError(t, err)
	assert.Equal(t, []byte("c1"), key)

	var c coin.Coin
	require.NoError(t, b.One(db, []byte("c1"), &c))
	assert.True(t, c.Equals(coin.NewCoin(5, 0, "TIDE")))

	err = b.One(db, []byte("unknown"), &c)
	assert.True(t, errors.ErrNotFound.Is(err))

	require.NoError(t, b.Has(db, []byte("c1")))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("unknown"))))

	require.NoError(t, b.Delete(db, []byte("c1")))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("c1"))))
	assert.True(t, errors.ErrNotFound.Is(b.Delete(db, []byte("c1"))))
}

func TestModelBucketPutSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	// no key given, acquire one from the sequence
	key, err := b.Put(db, nil, coin.NewCoinp(1, 0, "TIDE"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, key)

	key, err = b.Put(db, nil, coin.NewCoinp(2, 0, "TIDE"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 2}, key)
}

func TestModelBucketPutWrongModelType(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	_, err := b.Put(db, []byte("x"), &badModel{})
	assert.True(t, errors.ErrType.Is(err))
}

func TestModelBucketInvalidModel(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	// an invalid ticker must never be persisted
	_, err := b.Put(db, []byte("x"), coin.NewCoinp(1, 0, "le"))
	assert.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("x"))))
}

func TestModelBucketIterate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	_, err := b.Put(db, []byte("a"), coin.NewCoinp(1, 0, "TIDE"))
	require.NoError(t, err)
	_, err = b.Put(db, []byte("b"), coin.NewCoinp(2, 0, "TIDE"))
	require.NoError(t, err)

	// data under a different prefix must not leak into the walk
	db.Set([]byte("other:z"), []byte("junk"))

	var keys []string
	var total int64
	err = b.Iterate(db, func(key []byte, m Model) error {
		keys = append(keys, string(key))
		total += m.(*coin.Coin).Whole
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.EqualValues(t, 3, total)
}

func TestModelBucketKeysDoNotAlias(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("coins", &coin.Coin{})

	// short keys fit into the spare capacity of the prefix slice, a
	// second write must not rewrite the key stored by the first
	_, err := b.Put(db, []byte("a"), coin.NewCoinp(1, 0, "TIDE"))
	require.NoError(t, err)
	_, err = b.Put(db, []byte("b"), coin.NewCoinp(2, 0, "TIDE"))
	require.NoError(t, err)

	var c coin.Coin
	require.NoError(t, b.One(db, []byte("a"), &c))
	assert.True(t, c.Equals(coin.NewCoin(1, 0, "TIDE")))
	require.NoError(t, b.One(db, []byte("b"), &c))
	assert.True(t, c.Equals(coin.NewCoin(2, 0, "TIDE")))
}

func TestSequence(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("test", "counter")

	for i := int64(1); i < 10; i++ {
		assert.Equal(t, i, s.NextInt(db))
	}

	// a fresh instance continues from the persisted state
	s2 := NewSequence("test", "counter")
	assert.EqualValues(t, 10, s2.NextInt(db))
}

// badModel is a Model of a different type than the bucket holds
type badModel struct{}

func (badModel) Marshal() ([]byte, error) { return nil, nil }
func (*badModel) Unmarshal([]byte) error { return nil }
func (badModel) Validate() error { return nil }
