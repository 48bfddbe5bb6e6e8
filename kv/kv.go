// Package kv defines the namespaced key-value store consumed by the store
// backend, together with an in-memory reference implementation.
package kv

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("kv: item not found")
	ErrClosed   = errors.New("kv: store closed")
)

// Item is a single value stored under (namespace, key).
type Item struct {
	Value     map[string]any `json:"value"`
	Key       string         `json:"key"`
	Namespace []string       `json:"namespace"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is a paginated namespaced key-value store.
type Store interface {
	// Get returns the item stored under key or ErrNotFound.
	Get(ctx context.Context, namespace []string, key string) (*Item, error)
	// Put creates or replaces the value stored under key.
	// CreatedAt of an existing item is preserved.
	Put(ctx context.Context, namespace []string, key string, value map[string]any) error
	// Search returns items whose namespace starts with prefix and whose value
	// holds every filter entry, ordered by namespace and key.
	Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*Item, error)
	// Close releases the underlying resources.
	Close() error
}

// HasNamespacePrefix reports whether namespace starts with every segment of prefix.
func HasNamespacePrefix(namespace, prefix []string) bool {
	if len(prefix) > len(namespace) {
		return false
	}

	return slices.Equal(namespace[:len(prefix)], prefix)
}

// MatchesFilter reports whether value contains every entry of filter.
func MatchesFilter(value, filter map[string]any) bool {
	for k, want := range filter {
		got, exists := value[k]
		if !exists || !reflect.DeepEqual(got, want) {
			return false
		}
	}

	return true
}

// Paginate applies offset and limit to items. A limit of zero or less returns
// everything after offset.
func Paginate(items []*Item, limit, offset int) []*Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []*Item{}
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}

// SortItems orders items by namespace, then by key.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, nj := EncodeNamespace(items[i].Namespace), EncodeNamespace(items[j].Namespace)
		if ni != nj {
			return ni < nj
		}
		return items[i].Key < items[j].Key
	})
}

const (
	namespaceSep = "\x1f"
	keySep       = "\x1e"
)

// EncodeNamespace flattens a namespace into a string in which a prefix of
// segments always encodes to a string prefix.
func EncodeNamespace(namespace []string) string {
	var sb strings.Builder
	for _, segment := range namespace {
		sb.WriteString(segment)
		sb.WriteString(namespaceSep)
	}

	return sb.String()
}

// DecodeNamespace reverses EncodeNamespace.
func DecodeNamespace(encoded string) []string {
	segments := strings.Split(encoded, namespaceSep)
	return segments[:len(segments)-1]
}

// EncodeKey joins namespace and key into a single ordered key.
func EncodeKey(namespace []string, key string) string {
	return EncodeNamespace(namespace) + keySep + key
}

// DecodeKey splits an encoded key back into namespace and key.
func DecodeKey(encoded string) ([]string, string, bool) {
	idx := strings.Index(encoded, keySep)
	if idx < 0 {
		return nil, "", false
	}

	return DecodeNamespace(encoded[:idx]), encoded[idx+len(keySep):], true
}

// PathPrefix renders a namespace as a slash separated path below base, for
// stores that address values by hierarchical names. Segments are query
// escaped so they never contain '/' or '='.
func PathPrefix(base string, namespace []string) string {
	var sb strings.Builder
	sb.WriteString(strings.Trim(base, "/"))
	sb.WriteString("/")

	for _, segment := range namespace {
		sb.WriteString(url.QueryEscape(segment))
		sb.WriteString("/")
	}

	return sb.String()
}

// PathKey renders (namespace, key) as a single hierarchical name. The key
// segment is marked with a leading '=' to keep it apart from namespaces.
func PathKey(base string, namespace []string, key string) string {
	return PathPrefix(base, namespace) + "=" + url.QueryEscape(key)
}
