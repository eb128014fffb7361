package normalize

import (
	"context"
	"errors"
	"fmt"

	"greg-hacke/photosnorm/jpegtran"
	"greg-hacke/photosnorm/meta"
)

// FixRequest selects the fixes to apply
type FixRequest struct {
	Dimensions  bool
	Orientation bool
	FileName    bool
	Pattern     string // rename pattern, meta.DefaultPattern when empty
	Trim        bool   // drop partial edge MCUs when rotating
}

// none reports whether no fix was selected, which means every fix
func (f FixRequest) none() bool {
	return !f.Dimensions && !f.Orientation && !f.FileName
}

// Fix applies the requested fixes. Orientation runs first so the
// dimension fix sees the rotated pixels; renaming runs last.
func (r *Runner) Fix(ctx context.Context, paths []string, req FixRequest) []Result {
	if req.none() {
		req.Dimensions, req.Orientation, req.FileName = true, true, true
	}
	if req.Pattern == "" {
		req.Pattern = meta.DefaultPattern
	}

	return r.run(ctx, r.expand(paths), func(_ context.Context, path string) Result {
		m, res := r.open(path)
		if res != nil {
			return *res
		}
		var out Result

		if req.Orientation {
			_, err := m.FixOrientation(jpegtran.Options{Trim: req.Trim})
			switch {
			case errors.Is(err, jpegtran.ErrUnsupported):
				out.note(fmt.Sprintf("orientation left as is: %v", err))
			case err != nil:
				out.Status, out.Err = StatusFailed, err
				return out
			}
		}

		if req.Dimensions {
			_, err := m.FixDimensions()
			switch {
			case errors.Is(err, meta.ErrNoDimensions):
				out.note("dimensions unknown for " + m.Format().String())
			case err != nil:
				out.Status, out.Err = StatusFailed, err
				return out
			}
		}

		if req.FileName {
			if _, err := m.FixFileName(req.Pattern); err != nil {
				out.Status, out.Err = StatusFailed, err
				return out
			}
			if _, ok := m.Date(); !ok {
				out.note("no date, not renamed")
			}
		}

		r.save(m, &out)
		return out
	})
}
