package id

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.DefaultEntropy()
)

// New returns a time-sortable ULID string. Order and trade IDs sort by
// creation time, which keeps trade history and SQLite journal indexes cheap.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
