package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/roomkit/internal/room"
)

// Sink receives every asset the importer emits, with its YAML encoding.
//
// Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, asset *room.Asset, encoded []byte) error
}

// DirSink writes each asset to <dir>/<name>.yaml.
type DirSink struct {
	dir string
}

var _ Sink = (*DirSink)(nil)

// NewDirSink creates dir when missing.
//
// Postcondition: returns a DirSink whose directory exists, or an error.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Path returns the file an asset named name is written to.
func (s *DirSink) Path(name string) string {
	return filepath.Join(s.dir, FileStem(name)+".yaml")
}

// Write implements Sink.
func (s *DirSink) Write(ctx context.Context, asset *room.Asset, encoded []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	outPath := s.Path(asset.Name)
	if err := os.WriteFile(outPath, encoded, 0644); err != nil {
		return fmt.Errorf("writing room %q to %s: %w", asset.Name, outPath, err)
	}
	return nil
}
