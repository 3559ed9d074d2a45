package idgen

import "time"

// Entity prefixes used across the kanban data model. IDs look like
// "tsk-9wt4wq", "brd-ryl0x2", etc. — a short type prefix plus a base36 content
// hash, following the scheme in hash.go.
const (
	PrefixBoard      = "brd"
	PrefixColumn     = "col"
	PrefixTask       = "tsk"
	PrefixNote       = "note"
	PrefixTag        = "tag"
	PrefixRepoMap    = "map"
	PrefixBackup     = "bak"
	PrefixApiKey     = "key"
)

// HashLength is the default base36 hash width for generated IDs. 6 chars
// (~31 bits) keeps collisions rare for single-user boards while staying
// short enough to type and read in logs.
const HashLength = 6

// New generates a fresh, prefixed, content-derived ID for an entity. exists
// is consulted to resolve the rare collision by bumping a nonce; callers
// typically pass a closure backed by a uniqueness check against the
// database within the same transaction used to insert the row.
func New(prefix, seedTitle, seedDetail, actor string, now time.Time, exists func(string) bool) string {
	nonce := 0
	for {
		id := GenerateHashID(prefix, seedTitle, seedDetail, actor, now, HashLength, nonce)
		if exists == nil || !exists(id) {
			return id
		}
		nonce++
		if nonce > 50 {
			// Failsafe: widen the hash rather than loop forever on a
			// pathological exists() that always returns true.
			return GenerateHashID(prefix, seedTitle, seedDetail, actor, now, HashLength+2, nonce)
		}
	}
}
