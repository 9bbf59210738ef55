package level

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Extension is the file extension of level-editor files.
const Extension = ".cbld"

// ErrInvalidArgument is returned for a bad path, a wrong extension or an
// out-of-range selection. It is never worth retrying.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDecode is returned when the source bytes cannot be decoded.
var ErrDecode = errors.New("decode error")

// Decoder turns a raw level stream into a Graph.
//
// Precondition: r yields one complete encoded level.
// Postcondition: returns a non-nil Graph, or an error wrapping ErrDecode.
type Decoder interface {
	Decode(r io.Reader) (*Graph, error)
}

// YAMLDecoder reads a YAML dump of a decoded level graph.
type YAMLDecoder struct{}

var _ Decoder = YAMLDecoder{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := yaml.NewDecoder(r).Decode(&g); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty level stream", ErrDecode)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &g, nil
}

// CheckPath verifies that path names an existing regular file with the
// given extension.
//
// Postcondition: returns nil, or an error wrapping ErrInvalidArgument.
func CheckPath(path, ext string) error {
	if filepath.Ext(path) != ext {
		return fmt.Errorf("%w: path (%s) is invalid, it must be a %s file", ErrInvalidArgument, path, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: path (%s) is invalid: %v", ErrInvalidArgument, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: path (%s) is a directory", ErrInvalidArgument, path)
	}
	return nil
}

// Open checks path, reads it fully and decodes it with dec.
//
// Precondition: dec must be non-nil.
// Postcondition: returns a Graph owned by the caller, or an error wrapping
// ErrInvalidArgument or ErrDecode.
func Open(path, ext string, dec Decoder) (*Graph, error) {
	if err := CheckPath(path, ext); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidArgument, path, err)
	}
	defer f.Close()

	g, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return g, nil
}

// BaseName returns the file name of path without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
