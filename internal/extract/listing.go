package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gravestash/internal/model"
)

// ListingResult is one memorial-search result as printed on a listing page.
type ListingResult struct {
	// Ref is the memorial the result links to.
	Ref model.MemorialRef

	// Name is the full name shown in the result.
	Name string

	// Dates is the birth and death line as printed, e.g. "1 Jan 1900 – 1977".
	Dates string

	// Plot is the plot line as printed.
	Plot string

	// NoPhoto is true when the result notes that the grave has no photo.
	NoPhoto bool
}

// ListingResults reads every result of a listing page in page order.
// Results whose first link is not a memorial are skipped.
func (s *Schema) ListingResults(doc *goquery.Document) []ListingResult {
	var results []ListingResult
	marker := strings.ToLower(s.Search.NoPhoto)

	s.ListingItems(doc).Each(func(_ int, item *goquery.Selection) {
		href, ok := s.ListingLink(item).Attr("href")
		if !ok {
			return
		}
		ref, err := model.ParseMemorialURL(href)
		if err != nil {
			return
		}
		results = append(results, ListingResult{
			Ref:     ref,
			Name:    firstText(item, s.Search.name),
			Dates:   firstText(item, s.Search.dates),
			Plot:    firstText(item, s.Search.plot),
			NoPhoto: strings.Contains(strings.ToLower(firstText(item, s.Search.note)), marker),
		})
	})
	return results
}

// Photographer returns the name credited for the profile photo of a
// memorial page, or "" when the page has no photo.
func (s *Schema) Photographer(doc *goquery.Document) string {
	return firstText(doc.Selection, s.Search.photographer)
}

func firstText(sel *goquery.Selection, m goquery.Matcher) string {
	match := sel.FindMatcher(m).First()
	if match.Length() == 0 {
		return ""
	}
	return Text(match.Nodes[0])
}

// bothDatesUnknown is what a listing prints when neither date is known.
const bothDatesUnknown = "birth and death dates unknown"

// listingDateRegex matches one side of a listing date line: a year, with
// or without day and month, or the word unknown.
var listingDateRegex = regexp.MustCompile(`(?:\d{1,2} \w{3} )?(\d{4}|unknown)`)

// ShortDates reduces a listing date line to years:
//
//	"31 Jan 1927 – 31 Jan 1977"        -> "1927-1977"
//	"unknown – 1993"                   -> "?-1993"
//	"Birth and death dates unknown."   -> "unknown"
//
// A line with a single date yields that year alone, and a line with no
// recognizable date yields "".
func ShortDates(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if strings.TrimSuffix(lower, ".") == bothDatesUnknown {
		return "unknown"
	}
	m := listingDateRegex.FindAllStringSubmatch(lower, -1)
	switch len(m) {
	case 0:
		return ""
	case 2:
		return strings.ReplaceAll(m[0][1]+"-"+m[1][1], "unknown", "?")
	default:
		return m[0][1]
	}
}

// SortName turns a memorial slug into a "Surname, Given Names" label. A
// generational suffix stays at the end:
//
//	"mary-ann-smith"    -> "Smith, Mary Ann"
//	"henry-ford-iii"    -> "Ford, Henry III"
func SortName(slug string) string {
	tokens := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	if len(tokens) == 0 {
		return ""
	}

	last := len(tokens) - 1
	var suffix string
	if last > 0 && model.IsGenerationalSuffix(tokens[last]) {
		suffix = formatSuffix(tokens[last])
		tokens = tokens[:last]
		last--
	}

	name := TitleCase(tokens[last])
	if last > 0 {
		name += ", " + TitleCase(strings.Join(tokens[:last], " "))
	}
	if suffix != "" {
		if last == 0 {
			name += ","
		}
		name += " " + suffix
	}
	return name
}

// formatSuffix writes roman numerals in capitals and Jr/Sr in title case.
func formatSuffix(s string) string {
	if strings.Trim(strings.ToLower(s), "iv") == "" {
		return strings.ToUpper(s)
	}
	return TitleCase(s)
}
