package mirror

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SelectionStore persists the last-selected list id across sessions.
type SelectionStore interface {
	// Load returns the persisted id. ok is false when nothing is
	// persisted or the stored value is unreadable.
	Load() (id int, ok bool, err error)

	// Save persists the id.
	Save(id int) error

	// Clear removes the persisted id.
	Clear() error
}

// FileSelection stores the selected list id as a string-encoded integer
// in a single file.
type FileSelection struct {
	path string
}

// NewFileSelection creates a file-backed selection store at path.
func NewFileSelection(path string) *FileSelection {
	return &FileSelection{path: path}
}

// Load implements SelectionStore. A missing file or garbage content
// reads as "nothing selected" rather than an error.
func (f *FileSelection) Load() (int, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

// Save implements SelectionStore.
func (f *FileSelection) Save(id int) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(strconv.Itoa(id)), 0600)
}

// Clear implements SelectionStore.
func (f *FileSelection) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
