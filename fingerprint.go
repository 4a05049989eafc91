package docdex

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ContentIdentity is a stable key derived from a canonicalized locator.
// It is a pure function of the locator, not of the content, so re-fetching
// the same resource maps to the same chunk identities across runs.
type ContentIdentity string

// ContentHash is a digest of normalized text, used to detect change.
type ContentHash string

// Identity derives the content identity for a locator.
// The locator is canonicalized first so that trivially different spellings
// of the same resource (fragment, default port, trailing slash, case of
// scheme/host) share an identity.
func Identity(locator string) ContentIdentity {
	return ContentIdentity(hashString(CanonicalLocator(locator)))
}

// HashText computes the content hash of normalized text.
func HashText(text string) ContentHash {
	return ContentHash(hashString(text))
}

// CanonicalLocator normalizes a locator for identity derivation and
// frontier deduplication. Non-URL locators (filesystem paths) are returned
// with only trailing-slash trimming.
func CanonicalLocator(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" {
		return strings.TrimRight(locator, "/")
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if h, p, ok := strings.Cut(u.Host, ":"); ok {
		if (u.Scheme == "http" && p == "80") || (u.Scheme == "https" && p == "443") {
			u.Host = h
		}
	}
	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	return u.String()
}

// ChunkID builds the durable identity of a chunk from its parent content
// identity and its index within the parent.
func ChunkID(identity ContentIdentity, index int) string {
	return fmt.Sprintf("%s:%d", identity, index)
}

func hashString(s string) string {
	h := xxhash.Sum64String(s)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
