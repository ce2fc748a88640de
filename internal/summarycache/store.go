// Package summarycache provides the storage abstraction for per-session
// chunk summaries accumulated by the netsummary pipeline.
package summarycache

import (
	"errors"
	"strings"

	"github.com/netlens/netsummary/internal/errortypes"
)

// Key identifies one accumulating summarization session. Uniqueness of the
// (tenant, resource) pair is what isolates unrelated callers and devices.
type Key struct {
	Tenant   string
	Resource string
}

// NewKey validates and builds a session key.
func NewKey(tenant, resource string) (Key, error) {
	tenant = strings.TrimSpace(tenant)
	resource = strings.TrimSpace(resource)
	if tenant == "" {
		return Key{}, errortypes.ValidationError(errors.New("tenant is empty"), "session key requires a tenant")
	}
	if resource == "" {
		return Key{}, errortypes.ValidationError(errors.New("resource is empty"), "session key requires a resource")
	}
	return Key{Tenant: tenant, Resource: resource}, nil
}

// String renders the key for logs.
func (k Key) String() string {
	return k.Tenant + "/" + k.Resource
}

// Store holds the ordered chunk summaries for each session key. Entries are
// created lazily on first append and grow append-only; the core never evicts
// them, so process lifetime bounds their growth unless a caller injects a
// bounded implementation. Reset exists for tests and the explicit
// reset_session operation, not for the pipeline itself.
//
// Implementations must serialize appends on the same key so insertion order
// matches chunk commit order, and must not let distinct keys block each other.
type Store interface {
	// Append adds a summary to the tail of the entry for key, creating the
	// entry if absent.
	Append(key Key, summary string) error

	// Read returns the ordered summaries for key; an absent entry reads as
	// an empty sequence.
	Read(key Key) ([]string, error)

	// IsEmpty reports whether the entry for key holds no summaries.
	IsEmpty(key Key) (bool, error)

	// Reset drops the entry for key and returns the number of summaries
	// removed.
	Reset(key Key) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
