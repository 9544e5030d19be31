package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DocumentName is the registry file created at the project root.
const DocumentName = "erunner_cache.json"

// DefaultBinaryDir is the binary directory suggested at initialization.
const DefaultBinaryDir = "binary"

// ErrNotInitialized is returned when the registry document does not exist.
// It is distinct from I/O failure: the caller should suggest running init.
var ErrNotInitialized = errors.New("project is not initialized")

// Store persists the registry as a single pretty-printed JSON document.
//
// Every mutation is a full read-modify-write of the document: load, apply
// one change, rewrite atomically. There is no in-memory caching between
// operations, no locking and no versioning; concurrent external writers can
// lose updates. Single-writer-at-a-time is an assumed deployment invariant.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the registry document path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DocumentName)
}

// Initialized reports whether the registry document exists.
func (s *Store) Initialized() bool {
	info, err := os.Stat(s.Path())
	return err == nil && info.Mode().IsRegular()
}

// Init writes a fresh registry document. It refuses to overwrite an
// existing one.
func (s *Store) Init(reg Registry) error {
	if s.Initialized() {
		return fmt.Errorf("%s already exists", s.Path())
	}
	return s.write(reg)
}

// Config loads the whole registry document.
func (s *Store) Config() (Registry, error) {
	return s.load()
}

// PutConfig rewrites the whole registry document.
func (s *Store) PutConfig(reg Registry) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	return s.write(reg)
}

// Entry returns the cache entry for a source base name, or nil when the
// file has never been registered.
func (s *Store) Entry(filename string) (*FileCache, error) {
	reg, err := s.load()
	if err != nil {
		return nil, err
	}
	entry, ok := reg.Files[filename]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// PutEntry inserts or overwrites the cache entry for a source base name.
func (s *Store) PutEntry(filename string, entry FileCache) error {
	reg, err := s.load()
	if err != nil {
		return err
	}
	if reg.Files == nil {
		reg.Files = make(map[string]FileCache)
	}
	reg.Files[filename] = entry
	return s.write(reg)
}

func (s *Store) load() (Registry, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, ErrNotInitialized
		}
		return Registry{}, fmt.Errorf("reading registry: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return Registry{}, fmt.Errorf("parsing registry: %w", err)
	}
	return reg, nil
}

// write rewrites the document via a temp file and rename, so a crash cannot
// leave a truncated registry at the canonical path.
func (s *Store) write(reg Registry) error {
	if reg.Files == nil {
		reg.Files = make(map[string]FileCache)
	}
	if reg.Languages == nil {
		reg.Languages = make(map[string]string)
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.Path(), data, 0o644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

// DefaultLanguages returns the build commands seeded at initialization.
func DefaultLanguages() map[string]string {
	return map[string]string{
		"cpp": "g++ $(FILE) -o $(BIN_DIR)/$(FILENAME).$(EXE_EXT) --std=c++20",
		"c":   "gcc $(FILE) -o $(BIN_DIR)/$(FILENAME).$(EXE_EXT)",
	}
}
