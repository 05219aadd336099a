package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))

	cache := base.CacheWrap()

	// reads pass through to the backing store
	assert.Equal(t, []byte("1"), cache.Get([]byte("a")))
	assert.True(t, cache.Has([]byte("a")))
	assert.Nil(t, cache.Get([]byte("b")))

	// writes are not visible below until Write
	cache.Set([]byte("b"), []byte("2"))
	assert.Equal(t, []byte("2"), cache.Get([]byte("b")))
	assert.Nil(t, base.Get([]byte("b")))

	// deletes shadow the backing store
	cache.Delete([]byte("a"))
	assert.Nil(t, cache.Get([]byte("a")))
	assert.False(t, cache.Has([]byte("a")))
	assert.Equal(t, []byte("1"), base.Get([]byte("a")))

	cache.Write()
	assert.Equal(t, []byte("2"), base.Get([]byte("b")))
	assert.Nil(t, base.Get([]byte("a")))
}

func TestBTreeCacheDiscard(t *testing.T) {
	base := MemStore()
	base.Set([]byte("k"), []byte("v"))

	cache := base.CacheWrap()
	cache.Set([]byte("k"), []byte("w"))
	cache.Set([]byte("x"), []byte("y"))
	cache.Discard()

	assert.Equal(t, []byte("v"), base.Get([]byte("k")))
	assert.Nil(t, base.Get([]byte("x")))
}

func TestBTreeCacheWrapLayers(t *testing.T) {
	base := MemStore()
	first := base.CacheWrap()
	first.Set([]byte("a"), []byte("1"))

	second := first.CacheWrap()
	second.Set([]byte("b"), []byte("2"))
	second.Delete([]byte("a"))

	// second layer state
	assert.Nil(t, second.Get([]byte("a")))
	assert.Equal(t, []byte("2"), second.Get([]byte("b")))

	// first layer untouched until write
	assert.Equal(t, []byte("1"), first.Get([]byte("a")))
	assert.Nil(t, first.Get([]byte("b")))

	second.Write()
	assert.Nil(t, first.Get([]byte("a")))
	assert.Equal(t, []byte("2"), first.Get([]byte("b")))
}

func TestBTreeIterator(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))
	base.Set([]byte("c"), []byte("3"))
	base.Set([]byte("e"), []byte("5"))

	cache := base.CacheWrap()
	cache.Set([]byte("b"), []byte("2"))
	cache.Set([]byte("c"), []byte("33"))
	cache.Delete([]byte("e"))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		expKeys    []string
		expValues  []string
	}{
		"full range": {
			expKeys:   []string{"a", "b", "c"},
			expValues: []string{"1", "2", "33"},
		},
		"limited range": {
			start:     []byte("b"),
			end:       []byte("c"),
			expKeys:   []string{"b"},
			expValues: []string{"2"},
		},
		"reverse": {
			reverse:   true,
			expKeys:   []string{"c", "b", "a"},
			expValues: []string{"33", "2", "1"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var iter Iterator
			if tc.reverse {
				iter = cache.ReverseIterator(tc.start, tc.end)
			} else {
				iter = cache.Iterator(tc.start, tc.end)
			}
			defer iter.Close()

			var keys, values []string
			for iter.Valid() {
				keys = append(keys, string(iter.Key()))
				values = append(values, string(iter.Value()))
				iter.Next()
			}
			assert.Equal(t, tc.expKeys, keys)
			assert.Equal(t, tc.expValues, values)
		})
	}
}

func TestSliceIterator(t *testing.T) {
	models := []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}
	iter := NewSliceIterator(models)

	assert.True(t, iter.Valid())
	assert.Equal(t, []byte("a"), iter.Key())
	iter.Next()
	assert.Equal(t, []byte("2"), iter.Value())
	iter.Next()
	assert.False(t, iter.Valid())
	assert.Panics(t, func() { iter.Next() })
}
