package photozip

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// TokenBytes is the number of hash bytes kept in a token. Tokens are the
// hex encoding of these bytes, so every token is 2*TokenBytes characters.
const TokenBytes = 16

// TokenFor derives the token for a directory name: the first TokenBytes
// bytes of the BLAKE3 hash of the name, hex encoded.
func TokenFor(name string) string {
	sum := blake3.Sum256([]byte(name))
	return hex.EncodeToString(sum[:TokenBytes])
}

// Registry maps tokens to photo directories. It is built once and never
// mutated, so it is safe for concurrent lookups without locking.
type Registry struct {
	entries map[string]DirectoryEntry
}

// NewRegistry builds a registry from directory names. A name listed twice
// is registered once. Two different names that derive the same token make
// construction fail with ErrDuplicateToken.
func NewRegistry(names []string) (*Registry, error) {
	entries := make(map[string]DirectoryEntry, len(names))

	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty directory name", ErrInvalidInput)
		}

		token := TokenFor(name)
		if existing, ok := entries[token]; ok {
			if existing.Name == name {
				continue
			}
			return nil, fmt.Errorf("%w: %q and %q both map to %s", ErrDuplicateToken, existing.Name, name, token)
		}

		entries[token] = DirectoryEntry{Token: token, Name: name}
	}

	return &Registry{entries: entries}, nil
}

// LoadRegistry scans the store's immediate subdirectories and builds a
// registry from them.
func LoadRegistry(ctx context.Context, store PhotoStore) (*Registry, error) {
	names, err := store.Directories(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan photo directories: %w", err)
	}

	return NewRegistry(names)
}

// Lookup returns the directory registered under token.
func (r *Registry) Lookup(token string) (DirectoryEntry, bool) {
	entry, ok := r.entries[token]
	return entry, ok
}

// Len returns the number of registered directories.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns all registered directories sorted by name.
func (r *Registry) Entries() []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
