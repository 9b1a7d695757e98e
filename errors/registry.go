package errors

import (
	"fmt"
	"sort"
)

// Key is the symbolic, client-facing identifier of an error condition.
type Key string

// Entry is one error condition: the HTTP status it maps to and its default
// message. Entries are compared by identity, so always pass the pointer
// obtained from the catalog. Fields are read-only after NewEntry.
type Entry struct {
	status  int
	message string
}

// NewEntry creates an error condition. It still has to be registered before
// errors can be built from it.
func NewEntry(status int, message string) *Entry {
	return &Entry{status: status, message: message}
}

// Status returns the HTTP status of the condition.
func (e *Entry) Status() int { return e.status }

// Message returns the default client-facing message.
func (e *Entry) Message() string { return e.message }

// Retryable reports whether a client may retry a request that failed with
// this entry.
func (e *Entry) Retryable() bool {
	return retryableStatuses[e.status]
}

var retryableStatuses = map[int]bool{
	429: true,
	502: true,
	503: true,
	504: true,
}

// Registry is an immutable catalog of entries and their keys. It is safe for
// concurrent use: nothing writes to it after NewRegistry returns.
type Registry struct {
	byKey   map[Key]*Entry
	byEntry map[*Entry]Key
	keys    []Key
}

// NewRegistry builds a registry from the given key/entry bindings.
func NewRegistry(entries map[Key]*Entry) (*Registry, error) {
	r := &Registry{
		byKey:   make(map[Key]*Entry, len(entries)),
		byEntry: make(map[*Entry]Key, len(entries)),
		keys:    make([]Key, 0, len(entries)),
	}
	for key, entry := range entries {
		if key == "" {
			return nil, fmt.Errorf("errors: registry key must not be empty")
		}
		if entry == nil {
			return nil, fmt.Errorf("errors: entry for %s is nil", key)
		}
		if entry.status < 100 || entry.status > 599 {
			return nil, fmt.Errorf("errors: entry %s has invalid status %d", key, entry.status)
		}
		if prev, dup := r.byEntry[entry]; dup {
			return nil, fmt.Errorf("errors: entry registered twice as %s and %s", prev, key)
		}
		r.byKey[key] = entry
		r.byEntry[entry] = key
		r.keys = append(r.keys, key)
	}
	sort.Slice(r.keys, func(i, j int) bool { return r.keys[i] < r.keys[j] })
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid catalog.
func MustRegistry(entries map[Key]*Entry) *Registry {
	r, err := NewRegistry(entries)
	if err != nil {
		panic(err)
	}
	return r
}

// Key resolves an entry to its registered key. A false result means the
// entry was built outside the registry.
func (r *Registry) Key(entry *Entry) (Key, bool) {
	key, ok := r.byEntry[entry]
	return key, ok
}

// Entry returns the entry registered under key.
func (r *Registry) Entry(key Key) (*Entry, bool) {
	entry, ok := r.byKey[key]
	return entry, ok
}

// Keys returns all registered keys in lexical order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.keys) }
