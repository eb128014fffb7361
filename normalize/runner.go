// Package normalize runs the info, set and fix operations over files and
// folders with a bounded worker pool.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"greg-hacke/photosnorm/formats"
	"greg-hacke/photosnorm/logging"
	"greg-hacke/photosnorm/meta"

	"golang.org/x/sync/errgroup"
)

// Options configures a Runner
type Options struct {
	Jobs      int  // concurrent files, runtime.NumCPU() when < 1
	Recursive bool // walk folders recursively
}

// Runner processes files concurrently. Renames are serialized so that
// collision suffixes are decided one file at a time.
type Runner struct {
	opts     Options
	log      *slog.Logger
	renameMu sync.Mutex
}

// NewRunner returns a Runner with the given options
func NewRunner(opts Options) *Runner {
	if opts.Jobs < 1 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Runner{opts: opts, log: logging.New("normalize")}
}

// target is an expanded input path; err is set when it could not be read
type target struct {
	path string
	err  error
}

// expand turns the arguments into a file list. Folders contribute their
// regular files in name order, recursively when requested.
func (r *Runner) expand(paths []string) []target {
	var out []target
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			out = append(out, target{path: p, err: err})
			continue
		}
		if !info.IsDir() {
			out = append(out, target{path: p})
			continue
		}

		var files []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == p {
					return err
				}
				r.log.Warn("cannot read entry", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != p && !r.opts.Recursive {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			out = append(out, target{path: p, err: err})
			continue
		}
		sort.Strings(files)
		for _, f := range files {
			out = append(out, target{path: f})
		}
	}
	return out
}

// run applies fn to every target on the worker pool. Results keep the
// order of targets; files not started before ctx is done fail with its error.
func (r *Runner) run(ctx context.Context, targets []target, fn func(context.Context, string) Result) []Result {
	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	for i, t := range targets {
		if t.err != nil {
			r.log.Error("cannot read input", "path", t.path, "error", t.err)
			results[i] = Result{Path: t.path, Status: StatusFailed, Err: t.err}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Path: t.path, Status: StatusFailed, Err: err}
				return nil
			}
			res := fn(gctx, t.path)
			res.Path = t.path
			if res.Status == StatusFailed {
				r.log.Error("file failed", "path", t.path, "error", res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // errors are captured in Result.Err
	return results
}

// open loads an image. Non-images yield a skipped result.
func (r *Runner) open(path string) (*meta.Metadata, *Result) {
	m, err := meta.Open(path)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, formats.ErrUnknownFormat), errors.Is(err, formats.ErrNotImage):
		r.log.Debug("skipping non-image", "path", path, "error", err)
		return nil, &Result{Status: StatusSkipped, Notes: []string{"not an image"}}
	default:
		return nil, &Result{Status: StatusFailed, Err: fmt.Errorf("opening: %w", err)}
	}
}

// save writes the pending changes of m into res
func (r *Runner) save(m *meta.Metadata, res *Result) {
	if m.Changes().Empty() {
		if res.Status != StatusSkipped {
			res.Status = StatusUnchanged
		}
		return
	}
	oldPath := m.Path()
	changes, err := m.Save(meta.SaveOptions{Lock: &r.renameMu})
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("saving: %w", err)
		return
	}
	res.Changes = changes
	res.Status = StatusChanged
	if changes.Empty() {
		res.Status = StatusUnchanged
	}
	if m.Path() != oldPath {
		res.NewPath = m.Path()
	}
	r.log.Info("saved", "path", oldPath, "changes", changes.String(), "new_path", res.NewPath)
}
