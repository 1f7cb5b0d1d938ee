package crawler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/model"
)

func newTestLinkExtractor(t *testing.T) *LinkExtractor {
	t.Helper()

	schema, err := extract.DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema() error = %v", err)
	}
	return NewLinkExtractor(schema, testBase)
}

func TestLinkExtractor_ExtractIndexLinks(t *testing.T) {
	t.Parallel()

	l := newTestLinkExtractor(t)
	tests := []struct {
		name     string
		body     string
		want     []string
		wantMore bool
	}{
		{
			name: "results page",
			body: memorialItem("1", "anna-smith") +
				`<div class="memorial-item"><a href="https://www.findagrave.com/memorial/2/bert-smith?ref=x">B</a><a href="/memorial/9/z">Z</a></div>` +
				`<div class="memorial-item"><span>no link</span></div>` +
				`<div class="memorial-item"><a href="/virtual-cemetery/4">V</a></div>`,
			want: []string{
				testBase + "/memorial/1/anna-smith",
				testBase + "/memorial/2/bert-smith",
			},
			wantMore: true,
		},
		{
			name:     "end of listing",
			body:     endOfListing,
			wantMore: false,
		},
		{
			name:     "results with end marker",
			body:     memorialItem("3", "carl-jones") + endOfListing,
			want:     []string{testBase + "/memorial/3/carl-jones"},
			wantMore: false,
		},
		{
			name:     "empty page without marker",
			body:     `<html></html>`,
			wantMore: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, more, err := l.ExtractIndexLinks([]byte(tt.body))
			if err != nil {
				t.Fatalf("ExtractIndexLinks() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("links mismatch (-want +got):\n%s", diff)
			}
			if more != tt.wantMore {
				t.Errorf("more = %v, want %v", more, tt.wantMore)
			}
		})
	}
}

func TestLinkExtractor_ExtractRelationLinks(t *testing.T) {
	t.Parallel()

	l := newTestLinkExtractor(t)
	body := []byte(familySection("parentsLabel", "/memorial/10/otto-smith", "/memorial/11/eva-smith", "/memorial/10/otto-smith") +
		familySection("spouseLabel", "/memorial/2/bert-smith"))

	got, err := l.ExtractRelationLinks(body, model.Parent)
	if err != nil {
		t.Fatalf("ExtractRelationLinks() error = %v", err)
	}
	want := []string{testBase + "/memorial/10/otto-smith", testBase + "/memorial/11/eva-smith"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parent links mismatch (-want +got):\n%s", diff)
	}

	got, err = l.ExtractRelationLinks(body, model.Child)
	if err != nil || len(got) != 0 {
		t.Errorf("ExtractRelationLinks(child) = %v, %v, want none", got, err)
	}

	if _, err := l.ExtractRelationLinks(body, model.Burial); !errors.Is(err, model.ErrUnknownRelationKind) {
		t.Errorf("ExtractRelationLinks(burial) error = %v, want ErrUnknownRelationKind", err)
	}
}

func TestLinkExtractor_CemeteryName(t *testing.T) {
	t.Parallel()

	l := newTestLinkExtractor(t)
	name, err := l.CemeteryName([]byte(`<h1 class="bio-name">
		Sherrill UCC Cemetery
	</h1>`))
	if err != nil || name != "Sherrill UCC Cemetery" {
		t.Errorf("CemeteryName() = %q, %v", name, err)
	}

	if _, err := l.CemeteryName([]byte(`<h1>Other</h1>`)); !errors.Is(err, ErrCemeteryUnnamed) {
		t.Errorf("CemeteryName() error = %v, want ErrCemeteryUnnamed", err)
	}
}

func TestGroupError(t *testing.T) {
	t.Parallel()

	err := &GroupError{CemeteryID: "42", Kind: model.HalfSibling, Err: ErrNoBurials}
	if got, want := err.Error(), "cemetery 42, group half-sibling: no memorials found in cemetery"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNoBurials) {
		t.Error("GroupError should unwrap to its cause")
	}
}
