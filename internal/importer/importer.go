// Package importer runs room extraction over many level files and hands the
// emitted assets to one or more sinks.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/roomkit/internal/level"
	"github.com/cory-johannsen/roomkit/internal/room"
)

// Result is the outcome of importing one level file.
type Result struct {
	File     string
	Assets   []*room.Asset
	Duration time.Duration
	// Err joins every file- and asset-level failure; extracted rooms that
	// were written successfully stay in Assets.
	Err error
}

// Summary totals a run.
type Summary struct {
	Files    int
	Failed   int
	Rooms    int
	Duration time.Duration
}

// Summarize totals results.
func Summarize(results []Result, elapsed time.Duration) Summary {
	s := Summary{Files: len(results), Duration: elapsed}
	for _, r := range results {
		s.Rooms += len(r.Assets)
		if r.Err != nil {
			s.Failed++
		}
	}
	return s
}

// Importer orchestrates extraction of level files into sinks.
type Importer struct {
	extractor *room.Extractor
	decoder   level.Decoder
	sinks     []Sink
	workers   int
	logger    *zap.Logger
}

// New constructs an Importer.
//
// Precondition: extractor, decoder and logger must be non-nil; workers >= 1.
// Postcondition: returns a non-nil Importer.
func New(extractor *room.Extractor, decoder level.Decoder, workers int, logger *zap.Logger, sinks ...Sink) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		extractor: extractor,
		decoder:   decoder,
		sinks:     sinks,
		workers:   workers,
		logger:    logger,
	}
}

// RunSource lists root through src and imports every file found.
func (imp *Importer) RunSource(ctx context.Context, src Source, root string, opts room.Options) ([]Result, error) {
	files, err := src.Files(root)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	return imp.Run(ctx, files, opts)
}

// Run imports files concurrently, at most workers at a time. A failing file
// does not stop the others; cancelling ctx stops files not yet started.
//
// Postcondition: results[i] belongs to files[i] for every file that was
// started. The returned error joins every per-file error, plus ctx's error
// when the run was cut short.
func (imp *Importer) Run(ctx context.Context, files []string, opts room.Options) ([]Result, error) {
	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.workers)

	for i, path := range files {
		results[i].File = path
		if gctx.Err() != nil {
			results[i].Err = gctx.Err()
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i] = imp.importFile(gctx, path, opts)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.File, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (imp *Importer) importFile(ctx context.Context, path string, opts room.Options) Result {
	t0 := time.Now()
	res := Result{File: path}

	assets, err := imp.extractor.LoadFile(path, imp.decoder, opts)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(t0)
		imp.logger.Error("import failed",
			zap.String("file", path),
			zap.Error(err),
		)
		return res
	}

	var errs []error
	for _, a := range assets {
		if err := imp.emit(ctx, a); err != nil {
			errs = append(errs, err)
			imp.logger.Warn("room not written",
				zap.String("file", path),
				zap.String("room", a.Name),
				zap.Error(err),
			)
			continue
		}
		res.Assets = append(res.Assets, a)
	}
	res.Err = errors.Join(errs...)
	res.Duration = time.Since(t0)

	imp.logger.Info("imported file",
		zap.String("file", path),
		zap.Int("rooms", len(res.Assets)),
		zap.Int("failed", len(errs)),
		zap.Duration("duration", res.Duration.Round(time.Millisecond)),
	)
	return res
}

// emit encodes a, proves the encoding loads back, then hands it to every sink.
func (imp *Importer) emit(ctx context.Context, a *room.Asset) error {
	data, err := room.MarshalAsset(a)
	if err != nil {
		return err
	}
	if _, err := room.LoadAssetFromBytes(data); err != nil {
		return fmt.Errorf("room %q failed validation: %w", a.Name, err)
	}
	for _, s := range imp.sinks {
		if err := s.Write(ctx, a, data); err != nil {
			return err
		}
	}
	return nil
}
