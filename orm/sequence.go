package orm

import (
	"encoding/binary"

	"github.com/tidemark-io/tidemark"
)

// Sequence maintains a monotonic counter in the database,
// used to issue auto-incremented primary keys.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequences are
// namespaced by bucket and name.
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes
func (s Sequence) NextVal(db tidemark.KVStore) []byte {
	_, bz := s.increment(db)
	return bz
}

// NextInt increments the sequence and returns its state as int64
func (s Sequence) NextInt(db tidemark.KVStore) int64 {
	val, _ := s.increment(db)
	return val
}

func (s Sequence) increment(db tidemark.KVStore) (int64, []byte) {
	raw := db.Get(s.id)
	val := decodeSequence(raw)
	val++
	raw = encodeSequence(val)
	db.Set(s.id, raw)
	return val, raw
}

func decodeSequence(bz []byte) int64 {
	if bz == nil {
		return 0
	}
	val := binary.BigEndian.Uint64(bz)
	return int64(val)
}

func encodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
