package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gravestash/internal/model"
)

// Member is one person listed in a family section.
type Member struct {
	Ref   model.MemorialRef
	URL   string
	Name  string
	Birth string
	Death string
}

// FamilyMembers lists the members of kind's section on doc in source order.
// Links that are not memorial links are ignored and a memorial listed twice
// is kept once. A page without the section has no members.
func FamilyMembers(doc *goquery.Document, schema *Schema, kind model.RelationKind, base string) []Member {
	region := schema.FamilyRegion(doc, kind)
	if region.Length() == 0 {
		return nil
	}

	var members []Member
	seen := make(map[string]bool)
	add := func(item, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		ref, err := model.ParseMemorialURL(href)
		if err != nil || seen[ref.ID] {
			return
		}
		seen[ref.ID] = true

		m := Member{Ref: ref, URL: ref.URL(base)}
		m.Name = selectionText(item.FindMatcher(schema.Family.name).First())
		if m.Name == "" {
			m.Name = selectionText(anchor)
		}
		m.Birth = selectionText(item.FindMatcher(schema.Family.birth).First())
		m.Death = selectionText(item.FindMatcher(schema.Family.death).First())
		members = append(members, m)
	}

	items := region.FindMatcher(schema.Family.member)
	if items.Length() > 0 {
		items.Each(func(_ int, item *goquery.Selection) {
			item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if !strings.Contains(href, "/memorial/") {
					return true
				}
				add(item, a)
				return false
			})
		})
		return members
	}

	// No member markup: every memorial link in the section is a member.
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		add(a, a)
	})
	return members
}

// RelationLinks returns the absolute memorial URLs of kind's section.
func RelationLinks(doc *goquery.Document, schema *Schema, kind model.RelationKind, base string) []string {
	members := FamilyMembers(doc, schema, kind, base)
	links := make([]string, 0, len(members))
	for _, m := range members {
		links = append(links, m.URL)
	}
	return links
}

func selectionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return Text(s.Nodes[0])
}
