package config

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

// LoadSearches reads and parses the search file at path.
func LoadSearches(path string) ([]model.Search, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided search path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open search file: %w", err)
	}
	defer f.Close()

	return ParseSearches(f)
}

// ParseSearches parses a search file. Each line is
//
//	<memorial-search URL>;<label>
//
// where the URL is copied from the site's search form, without a page
// parameter, and the label names the worklist rows it produces. Blank
// lines and lines starting with "#" are skipped. Any bad line aborts
// parsing.
func ParseSearches(r io.Reader) ([]model.Search, error) {
	var searches []model.Search

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		search, err := parseSearch(line)
		if err != nil {
			return nil, &InstructionError{Line: lineNo, Text: raw, Err: err}
		}
		searches = append(searches, search)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search file: %w", err)
	}

	if len(searches) == 0 {
		return nil, ErrNoSearches
	}
	return searches, nil
}

func parseSearch(line string) (model.Search, error) {
	rawURL, label, ok := strings.Cut(line, ";")
	rawURL, label = strings.TrimSpace(rawURL), strings.TrimSpace(label)
	if !ok || label == "" {
		return model.Search{}, ErrInvalidSearch
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.Search{}, fmt.Errorf("%w: %w", ErrInvalidSearch, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Search{}, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidSearch, rawURL)
	}
	return model.Search{URL: rawURL, Label: label}, nil
}
