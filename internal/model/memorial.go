package model

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the origin every relative memorial and cemetery link is
// resolved against.
const DefaultBaseURL = "https://www.findagrave.com"

// ErrNotMemorialURL is returned when a URL has no /memorial/<id> segment.
var ErrNotMemorialURL = errors.New("not a memorial URL")

// ErrBadSlug is returned when a memorial slug, once unescaped, is more than
// a hyphenated name: slugs become stash file names.
var ErrBadSlug = errors.New("memorial slug is not a plain name")

// slugRegex is the shape of a decoded slug: letters, digits and hyphens.
var slugRegex = regexp.MustCompile(`^[\p{L}\p{N}-]*$`)

// memorialPathRegex matches "/memorial/<id>" optionally followed by "/<slug>".
var memorialPathRegex = regexp.MustCompile(`/memorial/(\d+)(?:/([^/?#]+))?`)

// MemorialRef identifies a single memorial page by its numeric id and the
// slug the site appends to it (e.g. /memorial/84600372/albert-mike-albrecht).
type MemorialRef struct {
	// ID is the numeric memorial id, kept as a string as it never takes
	// part in arithmetic.
	ID string

	// Slug is the hyphenated, lowercased name segment of the URL.
	Slug string
}

// ParseMemorialURL extracts a MemorialRef from an absolute or root-relative
// memorial URL. Query strings and fragments are ignored. A slug that
// decodes to anything but letters, digits and hyphens is rejected.
func ParseMemorialURL(raw string) (MemorialRef, error) {
	m := memorialPathRegex.FindStringSubmatch(raw)
	if m == nil {
		return MemorialRef{}, fmt.Errorf("%w: %q", ErrNotMemorialURL, raw)
	}
	slug, err := url.PathUnescape(m[2])
	if err != nil || !slugRegex.MatchString(slug) {
		return MemorialRef{}, fmt.Errorf("%w: %q", ErrBadSlug, m[2])
	}
	return MemorialRef{ID: m[1], Slug: strings.ToLower(slug)}, nil
}

// URL returns the absolute memorial URL under base.
func (r MemorialRef) URL(base string) string {
	u := strings.TrimRight(base, "/") + "/memorial/" + r.ID
	if r.Slug != "" {
		u += "/" + r.Slug
	}
	return u
}

// StashName is the file name stem used for the memorial in the stash:
// the URL tail after /memorial/ with the separator replaced by "_".
func (r MemorialRef) StashName() string {
	if r.Slug == "" {
		return r.ID
	}
	return r.ID + "_" + r.Slug
}

// SlugSurname returns the surname implied by the slug: the last hyphenated
// token that is not a generational suffix. It is lowercase, as in the slug.
func (r MemorialRef) SlugSurname() string {
	return SlugSurname(r.Slug)
}

// SlugSurname returns the last non-suffix token of a hyphenated slug.
func SlugSurname(slug string) string {
	tokens := strings.Split(strings.Trim(slug, "-"), "-")
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i] == "" || IsGenerationalSuffix(tokens[i]) {
			continue
		}
		return tokens[i]
	}
	return ""
}

// generationalSuffixes are name tokens that follow, rather than form, a
// surname.
var generationalSuffixes = map[string]bool{
	"jr":  true,
	"sr":  true,
	"i":   true,
	"ii":  true,
	"iii": true,
	"iv":  true,
	"v":   true,
	"vi":  true,
}

// IsGenerationalSuffix reports whether token is jr, sr or a roman numeral
// from I to VI. A trailing period and case are ignored.
func IsGenerationalSuffix(token string) bool {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	return generationalSuffixes[t]
}

// CemeteryUnit is one line of the instruction file: a cemetery and the
// groups to crawl for it.
type CemeteryUnit struct {
	// ID is the numeric cemetery id.
	ID string

	// Abbreviation is an optional short name, used as the worksheet name.
	Abbreviation string

	// Groups is the ordered list of groups to process.
	Groups []RelationKind
}

// URL returns the cemetery's landing page under base.
func (u CemeteryUnit) URL(base string) string {
	return CemeteryURL(base, u.ID)
}

// SearchURL returns the memorial-search listing page number page.
func (u CemeteryUnit) SearchURL(base string, page int) string {
	return fmt.Sprintf("%s/memorial-search?page=%d", u.URL(base), page)
}

// SheetName returns the abbreviation, or the id when none was given.
func (u CemeteryUnit) SheetName() string {
	if u.Abbreviation != "" {
		return u.Abbreviation
	}
	return u.ID
}

// CemeteryURL returns the landing page URL for cemetery id under base.
func CemeteryURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/cemetery/" + id
}

// cemeteryPathRegex matches "/cemetery/<id>".
var cemeteryPathRegex = regexp.MustCompile(`/cemetery/(\d+)`)

// ParseCemeteryID extracts the numeric cemetery id from a cemetery link.
// It returns "" when the link is not a cemetery link.
func ParseCemeteryID(raw string) string {
	m := cemeteryPathRegex.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}
