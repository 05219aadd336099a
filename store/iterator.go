package store

import (
	"bytes"

	"github.com/google/btree"
)

// item stores a key/value pair off the btree along with
// whether the key was deleted in the cache layer
type item struct {
	key     []byte
	value   []byte
	deleted bool
}

// btreeIter iterates over a btree domain in its own goroutine,
// feeding items over a channel so we can merge it lazily with
// the parent iterator
type btreeIter struct {
	read   <-chan item
	stop   chan<- struct{}
	ascend bool
}

func ascendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	read := make(chan item)
	stop := make(chan struct{})
	iter := &btreeIter{
		read:   read,
		stop:   stop,
		ascend: true,
	}

	go func() {
		insert := func(bi btree.Item) bool {
			it := toItem(bi)
			select {
			case read <- it:
				return true
			case <-stop:
				return false
			}
		}

		if start == nil && end == nil {
			bt.Ascend(insert)
		} else if start == nil { // end != nil
			bt.AscendLessThan(bkey{end}, insert)
		} else if end == nil { // start != nil
			bt.AscendGreaterOrEqual(bkey{start}, insert)
		} else { // both != nil
			bt.AscendRange(bkey{start}, bkey{end}, insert)
		}
		close(read)
	}()

	return iter
}

func descendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	read := make(chan item)
	stop := make(chan struct{})
	iter := &btreeIter{
		read: read,
		stop: stop,
	}

	go func() {
		insert := func(bi btree.Item) bool {
			it := toItem(bi)
			select {
			case read <- it:
				return true
			case <-stop:
				return false
			}
		}

		if start == nil && end == nil {
			bt.Descend(insert)
		} else if start == nil { // end != nil
			bt.DescendLessOrEqual(bkeyLess{end}, insert)
		} else if end == nil { // start != nil
			bt.DescendGreaterThan(bkeyLess{start}, insert)
		} else { // both != nil
			bt.DescendRange(bkeyLess{end}, bkeyLess{start}, insert)
		}
		close(read)
	}()

	return iter
}

func toItem(bi btree.Item) item {
	switch t := bi.(type) {
	case setItem:
		return item{key: t.key, value: t.value}
	case deletedItem:
		return item{key: t.key, deleted: true}
	default:
		// this should never happen, we control everything
		// that is placed in the tree
		panic("illegal item in btree")
	}
}

func (b *btreeIter) next() (item, bool) {
	data, hasMore := <-b.read
	return data, hasMore
}

func (b *btreeIter) release() {
	close(b.stop)
}

func (b *btreeIter) wrap(parent Iterator) *itemIter {
	iter := &itemIter{
		wrapped: b,
		parent:  parent,
	}
	iter.skipAllDeleted()
	return iter
}

// itemIter merges the btree overlay with the parent iterator,
// resolving deletes and shadowed keys as it goes
type itemIter struct {
	wrapped *btreeIter
	// cached item from wrapped iterator, if cachedMore is true
	cached     item
	cachedMore bool
	parent     Iterator
}

var _ Iterator = (*itemIter)(nil)

// peekWrapped will read the next value of the wrapped
// iterator without advancing it
func (i *itemIter) peekWrapped() (item, bool) {
	if !i.cachedMore {
		i.cached, i.cachedMore = i.wrapped.next()
	}
	return i.cached, i.cachedMore
}

func (i *itemIter) popWrapped() {
	i.cached, i.cachedMore = item{}, false
}

// Valid implements Iterator and returns true iff it can be read
func (i *itemIter) Valid() bool {
	_, wrappedMore := i.peekWrapped()
	return wrappedMore || i.parent.Valid()
}

// Next moves the iterator to the next sequential key,
// resolving shadowing between cache and parent
func (i *itemIter) Next() {
	wrapped, wrappedMore := i.peekWrapped()
	parentMore := i.parent.Valid()

	switch {
	case !wrappedMore && !parentMore:
		panic("Advancing an invalid iterator")
	case !wrappedMore:
		i.parent.Next()
	case !parentMore:
		i.popWrapped()
	default:
		// both are valid, advance whichever comes first,
		// or both if the cache shadows the parent key
		pkey := i.parent.Key()
		if first(i.wrapped.ascend, wrapped.key, pkey) {
			i.popWrapped()
		}
		if first(i.wrapped.ascend, pkey, wrapped.key) {
			i.parent.Next()
		}
	}
	i.skipAllDeleted()
}

// skipAllDeleted advances until the head of the merged stream is
// a live key (or the iterator is exhausted)
func (i *itemIter) skipAllDeleted() {
	for i.isDeleted() {
		i.skipDeleted()
	}
}

// isDeleted returns true if the next item to be returned is
// a delete tombstone from the cache
func (i *itemIter) isDeleted() bool {
	wrapped, wrappedMore := i.peekWrapped()
	if !wrappedMore || !wrapped.deleted {
		return false
	}
	if !i.parent.Valid() {
		return true
	}
	// only if the tombstone comes before the parent's cursor
	return first(i.wrapped.ascend, wrapped.key, i.parent.Key())
}

// skipDeleted pops the tombstone from the cache, along with the
// parent entry it shadows (if any)
func (i *itemIter) skipDeleted() {
	wrapped, _ := i.peekWrapped()
	if i.parent.Valid() && bytes.Equal(wrapped.key, i.parent.Key()) {
		i.parent.Next()
	}
	i.popWrapped()
}

// Key returns the key of the cursor
func (i *itemIter) Key() []byte {
	wrapped, wrappedMore := i.peekWrapped()
	if !wrappedMore {
		return i.parent.Key()
	}
	if !i.parent.Valid() {
		return wrapped.key
	}
	if first(i.wrapped.ascend, wrapped.key, i.parent.Key()) {
		return wrapped.key
	}
	return i.parent.Key()
}

// Value returns the value of the cursor
func (i *itemIter) Value() []byte {
	wrapped, wrappedMore := i.peekWrapped()
	if !wrappedMore {
		return i.parent.Value()
	}
	if !i.parent.Valid() {
		return wrapped.value
	}
	if first(i.wrapped.ascend, wrapped.key, i.parent.Key()) {
		return wrapped.value
	}
	return i.parent.Value()
}

// Close frees both underlying iterators
func (i *itemIter) Close() {
	i.wrapped.release()
	i.parent.Close()
}

// first returns true if a should be read before b in the
// given iteration direction. Ties go to the cache layer.
func first(ascend bool, a, b []byte) bool {
	cmp := bytes.Compare(a, b)
	if ascend {
		return cmp <= 0
	}
	return cmp >= 0
}
