package model

import "strings"

// CellKind tells writers how to render a Cell.
type CellKind int

const (
	// CellText is a plain string value.
	CellText CellKind = iota
	// CellLink is a hyperlink with display text.
	CellLink
	// CellRich is an ordered sequence of runs, some of them bold.
	CellRich
)

// Run is a span of rich text.
type Run struct {
	Text string
	Bold bool
}

// Cell is a single extracted value. The zero value is an empty text cell,
// which is what every extraction rule yields when its markup is missing.
type Cell struct {
	Kind CellKind

	// Text is the value of a text cell or the display text of a link.
	Text string

	// URL is the target of a link cell.
	URL string

	// Runs holds the spans of a rich cell.
	Runs []Run
}

// TextCell returns a plain text cell.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// LinkCell returns a hyperlink cell. An empty target yields an empty text
// cell so writers never emit a link to nowhere.
func LinkCell(target, text string) Cell {
	if target == "" {
		return Cell{}
	}
	if text == "" {
		text = target
	}
	return Cell{Kind: CellLink, URL: target, Text: text}
}

// RichCell returns a rich text cell. Empty runs are dropped; a cell with no
// bold run left collapses to plain text.
func RichCell(runs ...Run) Cell {
	kept := make([]Run, 0, len(runs))
	bold := false
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if r.Bold {
			bold = true
		}
		kept = append(kept, r)
	}
	if !bold {
		var sb strings.Builder
		for _, r := range kept {
			sb.WriteString(r.Text)
		}
		return TextCell(sb.String())
	}
	return Cell{Kind: CellRich, Runs: kept}
}

// IsEmpty reports whether the cell renders as an empty string.
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}

// String returns the plain rendering of the cell: the text of a text or
// link cell, or the concatenated runs of a rich cell.
func (c Cell) String() string {
	if c.Kind != CellRich {
		return c.Text
	}
	var sb strings.Builder
	for _, r := range c.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
