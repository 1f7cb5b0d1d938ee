package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

// Store is the stash rooted at a directory.
type Store struct {
	root string
}

// Open returns the stash at root, creating the directory if needed.
func Open(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("stash directory is empty")
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create stash directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the stash directory.
func (s *Store) Root() string {
	return s.root
}

// CemeteryPath returns the folder of cem.
func (s *Store) CemeteryPath(cem CemeteryDir) string {
	return filepath.Join(s.root, cem.Name())
}

// GroupPath returns the folder holding kind's pages for cem.
func (s *Store) GroupPath(cem CemeteryDir, kind model.RelationKind) string {
	return filepath.Join(s.CemeteryPath(cem), groupDirName(cem.ID, kind))
}

// ListPath returns the URL list file of kind for cem.
func (s *Store) ListPath(cem CemeteryDir, kind model.RelationKind) string {
	return filepath.Join(s.CemeteryPath(cem), groupDirName(cem.ID, kind)+listSuffix)
}

// HasList reports whether the list file of kind exists for cem.
func (s *Store) HasList(cem CemeteryDir, kind model.RelationKind) bool {
	_, err := os.Stat(s.ListPath(cem, kind))
	return err == nil
}

// Path returns the file path of the page identified by k.
func (s *Store) Path(k Key) string {
	return filepath.Join(s.GroupPath(k.Cemetery, k.Kind), k.FileName())
}

// Rel returns path relative to the stash root with forward slashes, the
// form used in the master index.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Abs resolves a master index entry back to a file path.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Exists reports whether the page identified by k is cached.
func (s *Store) Exists(k Key) bool {
	path, err := s.pagePath(k)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the cached body of k.
func (s *Store) Read(k Key) ([]byte, error) {
	path, err := s.pagePath(k)
	if err != nil {
		return nil, err
	}
	return readPage(path)
}

// ReadRel returns the cached body at a master index entry.
func (s *Store) ReadRel(rel string) ([]byte, error) {
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafeKey, rel)
	}
	return readPage(s.Abs(rel))
}

// Write caches body under k and returns the file path. It fails with
// ErrPageExists when the page is already cached and with ErrUnsafeKey when
// k would land outside its group folder.
func (s *Store) Write(k Key, body []byte) (string, error) {
	path, err := s.pagePath(k)
	if err != nil {
		return "", err
	}
	if err := writeNew(path, body); err != nil {
		return path, err
	}
	return path, nil
}

// pagePath is Path for keys whose cemetery folder and file name are both
// single local path elements.
func (s *Store) pagePath(k Key) (string, error) {
	for _, name := range []string{k.Cemetery.Name(), k.FileName()} {
		if !isPathElement(name) {
			return "", fmt.Errorf("%w: %q", ErrUnsafeKey, name)
		}
	}
	return s.Path(k), nil
}

func isPathElement(name string) bool {
	return filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// CemeteryPagePath returns the path of the cemetery's own landing page.
func (s *Store) CemeteryPagePath(cem CemeteryDir) string {
	return filepath.Join(s.CemeteryPath(cem), cem.ID+cemeteryPage)
}

// WriteCemeteryPage caches the cemetery landing page unless it already is.
func (s *Store) WriteCemeteryPage(cem CemeteryDir, body []byte) error {
	err := writeNew(s.CemeteryPagePath(cem), body)
	if errors.Is(err, ErrPageExists) {
		return nil
	}
	return err
}

// ReadCemeteryPage returns the cached cemetery landing page.
func (s *Store) ReadCemeteryPage(cem CemeteryDir) ([]byte, error) {
	return readPage(s.CemeteryPagePath(cem))
}

// EnsureCemetery creates the cemetery folder.
func (s *Store) EnsureCemetery(cem CemeteryDir) error {
	if err := os.MkdirAll(s.CemeteryPath(cem), 0750); err != nil {
		return fmt.Errorf("failed to create cemetery folder: %w", err)
	}
	return nil
}

// FindCemetery locates the existing folder of cemetery id.
func (s *Store) FindCemetery(id string) (CemeteryDir, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return CemeteryDir{}, fmt.Errorf("failed to read stash: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == id {
			return CemeteryDir{ID: id}, nil
		}
		if slug, ok := strings.CutPrefix(name, id+"_"); ok {
			return CemeteryDir{ID: id, Slug: slug}, nil
		}
	}
	return CemeteryDir{}, fmt.Errorf("%w: %s", ErrCemeteryNotFound, id)
}

// ResetGroup deletes kind's folder and list file for cem and recreates an
// empty folder. Pages in it will be fetched again.
func (s *Store) ResetGroup(cem CemeteryDir, kind model.RelationKind) error {
	dir := s.GroupPath(cem, kind)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove group folder: %w", err)
	}
	if err := os.Remove(s.ListPath(cem, kind)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove group list: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create group folder: %w", err)
	}
	return nil
}

// Walk returns every cached page as a master index entry, sorted.
func (s *Store) Walk() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), pageExt) {
			paths = append(paths, s.Rel(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk stash: %w", err)
	}
	slices.Sort(paths)
	return paths, nil
}

// ListFiles returns every group list file in the stash, sorted by path.
func (s *Store) ListFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "*", "*"+listSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to glob list files: %w", err)
	}
	slices.Sort(matches)
	return matches, nil
}

func readPage(path string) ([]byte, error) {
	body, err := os.ReadFile(path) //nolint:gosec // path is built inside the stash
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return body, nil
}

// writeNew writes body to path through a temporary file so a crash never
// leaves a half-written page that would later count as cached.
func writeNew(path string, body []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrPageExists, path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create page folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close page: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store page: %w", err)
	}
	return nil
}
