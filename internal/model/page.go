package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// MaxPageSize is the largest page body kept in the stash. Memorial pages are
// well under this; the fetcher rejects a larger body with fetch.ErrBodyTooLarge
// and nothing is stored.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// CachedPage is a fetched page body together with where it came from and
// where it was stored. Once written to the stash it is never mutated.
type CachedPage struct {
	// URL is the address the body was fetched from.
	URL string

	// Kind is the crawl group the page was stored under.
	Kind RelationKind

	// CemeteryID is the cemetery whose folder holds the page.
	CemeteryID string

	// Target is the memorial the page describes.
	Target MemorialRef

	// Owner is the burial whose family section led to the page.
	// Zero for burial pages.
	Owner MemorialRef

	// Path is the stash file path of the page.
	Path string

	// Body is the raw HTML.
	Body []byte

	// Digest is the hex SHA3-256 of Body. Two runs that fetch identical
	// markup record identical digests.
	Digest string

	// Fetched is false when the page was already in the stash.
	Fetched bool
}

// ComputeDigest calculates and sets Digest from Body.
func (p *CachedPage) ComputeDigest() {
	if len(p.Body) == 0 {
		p.Digest = ""
		return
	}
	sum := sha3.Sum256(p.Body)
	p.Digest = hex.EncodeToString(sum[:])
}

// Size returns the body length in bytes.
func (p *CachedPage) Size() int {
	return len(p.Body)
}

// RelationEdge is one family link found on a burial page: To is listed in
// the Kind section of From's page.
type RelationEdge struct {
	// CemeteryID is the cemetery whose burial list holds From.
	CemeteryID string

	// Kind is the family section the link was found in.
	Kind RelationKind

	// From is the burial whose page lists To.
	From MemorialRef

	// To is the listed family member.
	To MemorialRef
}
