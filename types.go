package tidemark

// Persistent is implemented by anything that can be stored in a bucket.
// Marshal and Unmarshal are implemented by all protobuf messages.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
