package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/gravestash/internal/model"
)

// TitleCase capitalizes each word of s ("smith" -> "Smith",
// "van-dyke" -> "Van-Dyke").
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// BoldLastName splits a full name into runs with the surname in bold. The
// surname is the last space separated token, unless that token is a
// generational suffix (Jr., Sr., I to VI), in which case the token before
// it is bolded and the suffix follows as plain text.
//
//	"John Henry Smith Jr." -> "John Henry " + **"Smith"** + " Jr."
func BoldLastName(full string) []model.Run {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return nil
	}

	last := len(tokens) - 1
	var suffix string
	if last > 0 && model.IsGenerationalSuffix(tokens[last]) {
		suffix = tokens[last]
		last--
	}

	var runs []model.Run
	if last > 0 {
		runs = append(runs, model.Run{Text: strings.Join(tokens[:last], " ") + " "})
	}
	runs = append(runs, model.Run{Text: tokens[last], Bold: true})
	if suffix != "" {
		runs = append(runs, model.Run{Text: " " + suffix})
	}
	return runs
}

// InferParentsSurname guesses the family surname from the parents listed
// on self's page. With two parents the first one is taken to be the father
// and his slug surname is used. With one parent the surname is only kept
// when it equals self's own slug surname. Any other count yields "".
func InferParentsSurname(self model.MemorialRef, parents []model.MemorialRef) string {
	switch len(parents) {
	case 1:
		own := self.SlugSurname()
		if own != "" && own == parents[0].SlugSurname() {
			return TitleCase(own)
		}
		return ""
	case 2:
		return TitleCase(parents[0].SlugSurname())
	default:
		return ""
	}
}
