package types

import (
	"errors"

	"github.com/uptrace/bun"
)

// ErrMalformedEntry is returned by cache stores when a stored entry exists
// but one of its fields cannot be decoded.
var ErrMalformedEntry = errors.New("malformed cache entry")

// CacheEntry stores the raw response of an upstream request keyed by its
// canonical serialization.
type CacheEntry struct {
	bun.BaseModel `bun:"table:request_cache"`

	Key         string `bun:",pk"      json:"key"`
	Response    string `bun:",notnull" json:"response"`
	LastUpdated int64  `bun:",notnull" json:"lastUpdated"` // Unix seconds
}

// RandomCacheEntry stores the last fetched page of a paginated sequence.
type RandomCacheEntry struct {
	bun.BaseModel `bun:"table:random_cache"`

	CursorKey   string `bun:",pk"                 json:"cursorKey"`
	Response    string `bun:",notnull"            json:"response"`
	LastUpdated int64  `bun:",notnull"            json:"lastUpdated"` // Unix seconds
	LastPage    int64  `bun:",notnull,default:1"  json:"lastPage"`
}
