package cache

// Cache is a synchronous local key-value store used as an offline
// fallback mirror of the remote state store.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Set stores a value under the key, replacing any existing value.
	Set(key string, value []byte) error
	// Get returns the value for the key. A missing key is an ErrMiss.
	Get(key string) ([]byte, error)
}

type ErrMiss struct {
}

func (e *ErrMiss) Error() string {
	return "cache miss"
}

func IsMiss(err error) bool {
	_, ok := err.(*ErrMiss)
	return ok
}
