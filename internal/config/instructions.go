package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

// ErrUnknownRelationKind is returned for a group token that names no
// relation kind.
var ErrUnknownRelationKind = model.ErrUnknownRelationKind

// logDirective is the instruction line that turns on the run log file.
const logDirective = "log"

// Instructions is the parsed instruction file.
type Instructions struct {
	// Units lists the cemeteries in file order.
	Units []model.CemeteryUnit

	// RunLog is true when the file contains a "log" line.
	RunLog bool
}

// LoadInstructions reads and parses the instruction file at path.
func LoadInstructions(path string) (*Instructions, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided instruction path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open instruction file: %w", err)
	}
	defer f.Close()

	return ParseInstructions(f)
}

// ParseInstructions parses an instruction file.
//
// Each line is one of:
//
//	<cemeteryId>[-<abbreviation>][:<kind>,<kind>,...]
//	log
//
// Blank lines and lines starting with "#" or a space are skipped. Spaces
// inside a line are ignored. A line without a group list, or with an empty
// one, crawls every group. Any bad line aborts parsing.
func ParseInstructions(r io.Reader) (*Instructions, error) {
	ins := &Instructions{Units: make([]model.CemeteryUnit, 0)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, " ") {
			continue
		}

		line := strings.ReplaceAll(raw, " ", "")
		if strings.EqualFold(line, logDirective) {
			ins.RunLog = true
			continue
		}

		unit, err := parseUnit(line)
		if err != nil {
			return nil, &InstructionError{Line: lineNo, Text: raw, Err: err}
		}
		ins.Units = append(ins.Units, unit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instruction file: %w", err)
	}

	if len(ins.Units) == 0 {
		return nil, ErrNoCemeteries
	}
	return ins, nil
}

// parseUnit parses a single cemetery line with spaces already removed.
func parseUnit(line string) (model.CemeteryUnit, error) {
	head, groupList, hasGroups := strings.Cut(line, ":")

	id, abbr, _ := strings.Cut(head, "-")
	if !isNumeric(id) {
		return model.CemeteryUnit{}, fmt.Errorf("%w: %q", ErrInvalidCemeteryID, id)
	}

	unit := model.CemeteryUnit{ID: id, Abbreviation: abbr}

	groupList = strings.TrimRight(groupList, ",")
	if !hasGroups || groupList == "" {
		unit.Groups = model.AllRelationKinds()
		return unit, nil
	}

	kinds := make([]model.RelationKind, 0)
	for _, token := range strings.Split(groupList, ",") {
		k, err := model.ParseRelationKind(token)
		if err != nil {
			return model.CemeteryUnit{}, err
		}
		kinds = append(kinds, k)
	}
	unit.Groups = model.NormalizeGroups(kinds)
	return unit, nil
}

func isNumeric(s string) bool {
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
