package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Source lists the level files to import.
//
// Postcondition: returns paths in a stable order, or a non-nil error.
type Source interface {
	Files(root string) ([]string, error)
}

// DirSource finds level files by extension. A root naming a file is returned
// as is, whatever its extension, so the extractor reports the mismatch.
type DirSource struct {
	Extension string
}

var _ Source = DirSource{}

// NewDirSource constructs a DirSource for files ending in ext.
func NewDirSource(ext string) DirSource { return DirSource{Extension: ext} }

// Files walks root recursively and returns every file with the source's
// extension, sorted lexically.
//
// Precondition: root must exist.
func (s DirSource) Files(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == s.Extension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking source %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
