package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRelationKind is returned when a relation token does not name
// one of the crawl groups.
var ErrUnknownRelationKind = errors.New("unknown relation kind")

// RelationKind identifies a crawl group. Burial is the root group (the
// cemetery's own listing); the remaining kinds are one-hop family
// neighbours of a burial.
type RelationKind int

const (
	// Burial is a memorial listed in the cemetery's own search results.
	Burial RelationKind = iota
	// Parent is a memorial listed in a burial's parents section.
	Parent
	// Spouse is a memorial listed in a burial's spouse section.
	Spouse
	// Child is a memorial listed in a burial's children section.
	Child
	// Sibling is a memorial listed in a burial's siblings section.
	Sibling
	// HalfSibling is a memorial listed in a burial's half-siblings section.
	HalfSibling
)

// relationCount is the number of relation kinds, used to size lookup tables.
const relationCount = int(HalfSibling) + 1

// relationTokens are the instruction-file spellings, indexed by kind.
var relationTokens = [relationCount]string{
	Burial:      "burial",
	Parent:      "parent",
	Spouse:      "spouse",
	Child:       "child",
	Sibling:     "sibling",
	HalfSibling: "half-sibling",
}

// relationPlurals are the folder suffixes, indexed by kind.
var relationPlurals = [relationCount]string{
	Burial:      "burials",
	Parent:      "parents",
	Spouse:      "spouses",
	Child:       "children",
	Sibling:     "siblings",
	HalfSibling: "half-siblings",
}

// String returns the instruction-file token for the kind.
func (k RelationKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("RelationKind(%d)", int(k))
	}
	return relationTokens[k]
}

// Plural returns the plural form used in stash folder and list file names.
func (k RelationKind) Plural() string {
	if !k.Valid() {
		return ""
	}
	return relationPlurals[k]
}

// Valid reports whether k is one of the declared kinds.
func (k RelationKind) Valid() bool {
	return k >= Burial && k <= HalfSibling
}

// IsFamily reports whether k is a family relation (anything but Burial).
func (k RelationKind) IsFamily() bool {
	return k.Valid() && k != Burial
}

// ParseRelationKind converts an instruction token into a RelationKind.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseRelationKind(token string) (RelationKind, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for i, name := range relationTokens {
		if name == t {
			return RelationKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRelationKind, token)
}

// ParseRelationPlural converts a folder suffix (e.g. "half-siblings") into a
// RelationKind.
func ParseRelationPlural(plural string) (RelationKind, error) {
	for i, name := range relationPlurals {
		if name == plural {
			return RelationKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRelationKind, plural)
}

// AllRelationKinds returns every kind in processing order: burial first.
func AllRelationKinds() []RelationKind {
	return []RelationKind{Burial, Parent, Spouse, Child, Sibling, HalfSibling}
}

// FamilyKinds returns the five family relation kinds.
func FamilyKinds() []RelationKind {
	return []RelationKind{Parent, Spouse, Child, Sibling, HalfSibling}
}

// NormalizeGroups removes duplicate kinds, keeping the first occurrence, and
// moves Burial to the front when it is present. Every other group reads the
// burial list, so burial must always be resolved first.
func NormalizeGroups(kinds []RelationKind) []RelationKind {
	seen := make(map[RelationKind]bool, len(kinds))
	out := make([]RelationKind, 0, len(kinds))
	hasBurial := false

	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		if k == Burial {
			hasBurial = true
			continue
		}
		out = append(out, k)
	}

	if hasBurial {
		out = append([]RelationKind{Burial}, out...)
	}
	return out
}
