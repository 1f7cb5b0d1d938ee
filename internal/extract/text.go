package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text returns the text content of n with all whitespace runs collapsed to
// single spaces. Script and style content is skipped.
func Text(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, false)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// MultilineText returns the text content of n keeping the line structure:
// <br> and block elements end a line, blank lines between paragraphs are
// kept (at most one in a row), and whitespace inside a line is collapsed.
func MultilineText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, true)

	var lines []string
	blank := false
	for line := range strings.SplitSeq(sb.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, sb *strings.Builder, lines bool) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			if lines {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		writeBreak(sb, lines)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, lines)
	}
	if block {
		writeBreak(sb, lines)
		if lines && n.DataAtom == atom.P {
			sb.WriteByte('\n')
		}
	}
}

func writeBreak(sb *strings.Builder, lines bool) {
	if !lines {
		sb.WriteByte(' ')
		return
	}
	s := sb.String()
	if s == "" || s[len(s)-1] == '\n' {
		return
	}
	sb.WriteByte('\n')
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Section,
		atom.Article, atom.Tr, atom.Table, atom.Dd, atom.Dt, atom.Dl:
		return true
	}
	return false
}
