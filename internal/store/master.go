package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/nao1215/gravestash/internal/model"
)

// File names of the collection-wide lists at the stash root.
const (
	MasterListName  = "master_list.txt"
	MasterIndexName = "master_index.txt"
)

// MasterList is the running list of every URL fetched into the stash. The
// crawler consults it before fetching a relation link.
type MasterList struct {
	urls []string
	set  map[string]struct{}
}

// NewMasterList returns a list holding urls, duplicates dropped.
func NewMasterList(urls []string) *MasterList {
	m := &MasterList{set: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		m.Add(u)
	}
	return m
}

// Contains reports whether url is already listed.
func (m *MasterList) Contains(url string) bool {
	_, ok := m.set[url]
	return ok
}

// Add appends url and reports whether it was new.
func (m *MasterList) Add(url string) bool {
	if url == "" || m.Contains(url) {
		return false
	}
	m.set[url] = struct{}{}
	m.urls = append(m.urls, url)
	return true
}

// URLs returns the listed URLs in insertion order.
func (m *MasterList) URLs() []string {
	return append([]string(nil), m.urls...)
}

// Len returns the number of URLs.
func (m *MasterList) Len() int {
	return len(m.urls)
}

// BuildMasterList concatenates every group list in the stash.
func (s *Store) BuildMasterList() (*MasterList, error) {
	lists, err := s.ListFiles()
	if err != nil {
		return nil, err
	}
	m := NewMasterList(nil)
	for _, p := range lists {
		entries, err := ReadList(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			m.Add(e)
		}
	}
	return m, nil
}

// SaveMasterList writes m to the stash root.
func (s *Store) SaveMasterList(m *MasterList) error {
	return WriteList(filepath.Join(s.root, MasterListName), m.urls)
}

// LoadMasterList reads the saved master list. A stash without one yields
// an empty list.
func (s *Store) LoadMasterList() (*MasterList, error) {
	entries, err := ReadList(filepath.Join(s.root, MasterListName))
	if errors.Is(err, fs.ErrNotExist) {
		return NewMasterList(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return NewMasterList(entries), nil
}

// MasterIndex lists every cached page and resolves a memorial id to the
// page that shows it.
type MasterIndex struct {
	paths    []string
	byTarget map[string]indexEntry
}

type indexEntry struct {
	path string
	kind model.RelationKind
}

// NewMasterIndex indexes paths (master index entries, relative to the
// stash root). Only pages inside group folders take part in lookups.
func NewMasterIndex(paths []string) *MasterIndex {
	m := &MasterIndex{
		paths:    append([]string(nil), paths...),
		byTarget: make(map[string]indexEntry, len(paths)),
	}
	for _, p := range paths {
		if !isGroupDir(path.Base(path.Dir(p))) {
			continue
		}
		k, err := ParseFileName(path.Base(p))
		if err != nil {
			continue
		}
		prev, seen := m.byTarget[k.Target.ID]
		if !seen || (prev.kind != model.Burial && k.Kind == model.Burial) {
			m.byTarget[k.Target.ID] = indexEntry{path: p, kind: k.Kind}
		}
	}
	return m
}

// Lookup returns the entry of a cached page showing memorial id, preferring
// burial pages over family pages.
func (m *MasterIndex) Lookup(memorialID string) (string, bool) {
	e, ok := m.byTarget[memorialID]
	return e.path, ok
}

// Paths returns all entries, sorted.
func (m *MasterIndex) Paths() []string {
	return append([]string(nil), m.paths...)
}

// Len returns the number of cached pages.
func (m *MasterIndex) Len() int {
	return len(m.paths)
}

// BuildMasterIndex scans the stash for cached pages.
func (s *Store) BuildMasterIndex() (*MasterIndex, error) {
	paths, err := s.Walk()
	if err != nil {
		return nil, err
	}
	return NewMasterIndex(paths), nil
}

// SaveMasterIndex writes m to the stash root.
func (s *Store) SaveMasterIndex(m *MasterIndex) error {
	return WriteList(filepath.Join(s.root, MasterIndexName), m.paths)
}

// LoadMasterIndex reads the saved master index, or scans the stash when
// none was saved.
func (s *Store) LoadMasterIndex() (*MasterIndex, error) {
	entries, err := ReadList(filepath.Join(s.root, MasterIndexName))
	if errors.Is(err, fs.ErrNotExist) {
		return s.BuildMasterIndex()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load master index: %w", err)
	}
	return NewMasterIndex(entries), nil
}
