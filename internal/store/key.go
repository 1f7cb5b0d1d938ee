package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

const (
	pageExt        = ".html"
	listSuffix     = "_list.txt"
	cemeteryPage   = "_page.html"
	relationSuffix = "-of"
)

// CemeteryDir names a cemetery folder: <id>_<slug>.
type CemeteryDir struct {
	ID   string
	Slug string
}

// Name returns the folder name.
func (c CemeteryDir) Name() string {
	if c.Slug == "" {
		return c.ID
	}
	return c.ID + "_" + c.Slug
}

// CemeterySlug turns a cemetery's display name into its folder slug:
// trimmed, lowercased, spaces replaced by "-".
func CemeterySlug(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	slug := strings.Join(fields, "-")
	// Keep the slug a single path element.
	return strings.NewReplacer("/", "-", "\\", "-", "_", "-").Replace(slug)
}

// groupDirName returns "<cemId>_<plural>".
func groupDirName(cemeteryID string, kind model.RelationKind) string {
	return cemeteryID + "_" + kind.Plural()
}

// groupDirRegex matches group folder names and captures the plural.
var groupDirRegex = regexp.MustCompile(`^\d+_([a-z-]+)$`)

// isGroupDir reports whether name is a group folder name.
func isGroupDir(name string) bool {
	m := groupDirRegex.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	_, err := model.ParseRelationPlural(m[1])
	return err == nil
}

// Key identifies one cached memorial page.
type Key struct {
	// Cemetery is the folder the page belongs to.
	Cemetery CemeteryDir

	// Kind is the group the page was crawled in.
	Kind model.RelationKind

	// Target is the memorial the page shows.
	Target model.MemorialRef

	// Owner is the burial whose family section listed Target.
	// It is ignored for burial pages.
	Owner model.MemorialRef
}

// BurialKey returns the key of a burial page.
func BurialKey(cem CemeteryDir, target model.MemorialRef) Key {
	return Key{Cemetery: cem, Kind: model.Burial, Target: target}
}

// FamilyKey returns the key of a family member page found on owner's page.
func FamilyKey(cem CemeteryDir, kind model.RelationKind, target, owner model.MemorialRef) Key {
	return Key{Cemetery: cem, Kind: kind, Target: target, Owner: owner}
}

// FileName returns the page's file name. Burial pages are
// "<id>_<slug>.html"; family pages are
// "<famId>_<famSlug>_<kind>-of_<burId>_<burSlug>.html".
func (k Key) FileName() string {
	if k.Kind == model.Burial {
		return k.Target.StashName() + pageExt
	}
	return k.Target.StashName() + "_" + k.Kind.String() + relationSuffix + "_" + k.Owner.StashName() + pageExt
}

// ParseFileName reverses Key.FileName. The returned key has no Cemetery.
func ParseFileName(name string) (Key, error) {
	stem, ok := strings.CutSuffix(name, pageExt)
	if !ok || stem == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrBadFileName, name)
	}

	parts := strings.Split(stem, "_")
	for i, part := range parts {
		token, ok := strings.CutSuffix(part, relationSuffix)
		if !ok {
			continue
		}
		kind, err := model.ParseRelationKind(token)
		if err != nil || !kind.IsFamily() {
			continue
		}
		target, err := parseStashName(parts[:i])
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q", ErrBadFileName, name)
		}
		owner, err := parseStashName(parts[i+1:])
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q", ErrBadFileName, name)
		}
		return Key{Kind: kind, Target: target, Owner: owner}, nil
	}

	target, err := parseStashName(parts)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	return Key{Kind: model.Burial, Target: target}, nil
}

// parseStashName reads "<id>" or "<id>_<slug>" split on "_".
func parseStashName(parts []string) (model.MemorialRef, error) {
	if len(parts) == 0 || len(parts) > 2 || !isDigits(parts[0]) {
		return model.MemorialRef{}, ErrBadFileName
	}
	ref := model.MemorialRef{ID: parts[0]}
	if len(parts) == 2 {
		ref.Slug = parts[1]
	}
	return ref, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
