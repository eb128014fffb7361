package normalize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/formats"
)

// ErrNothingToSet is returned when a set request names no tag
var ErrNothingToSet = errors.New("normalize: nothing to set, give a description or a date")

// SetRequest lists the tags to write. Nil fields are left alone.
type SetRequest struct {
	Description *string
	Date        *time.Time
	// Force overwrites tags that already hold another value when more
	// than one file is targeted
	Force bool
}

// Set writes the description and date tags. With several files and no
// Force, tags that already hold a different value are kept.
func (r *Runner) Set(ctx context.Context, paths []string, req SetRequest) ([]Result, error) {
	if req.Description == nil && req.Date == nil {
		return nil, ErrNothingToSet
	}
	targets := r.expand(paths)
	protect := len(targets) > 1 && !req.Force

	return r.run(ctx, targets, func(_ context.Context, path string) Result {
		m, res := r.open(path)
		if res != nil {
			return *res
		}
		var out Result

		if req.Description != nil {
			if cur := m.ExifDescription(); protect && cur != "" && cur != strings.TrimSpace(*req.Description) {
				out.note(fmt.Sprintf("description already set to %q, use --force", cur))
			} else if _, err := m.SetDescription(*req.Description); err != nil {
				return setFailure(out, err)
			}
		}

		if req.Date != nil {
			if cur, ok := m.ExifDate(); protect && ok && !cur.Equal(*req.Date) {
				out.note(fmt.Sprintf("date already set to %s, use --force", exif.FormatDateTime(cur)))
			} else if _, err := m.SetDate(*req.Date); err != nil {
				return setFailure(out, err)
			}
		}

		if m.Changes().Empty() && len(out.Notes) > 0 {
			out.Status = StatusSkipped
		}
		r.save(m, &out)
		return out
	}), nil
}

func setFailure(res Result, err error) Result {
	if errors.Is(err, formats.ErrNoContainer) {
		res.Status = StatusSkipped
		res.note("format cannot carry EXIF")
		return res
	}
	res.Status, res.Err = StatusFailed, err
	return res
}
