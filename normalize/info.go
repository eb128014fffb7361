package normalize

import (
	"context"
)

// Info reads the metadata of every image. Nothing is written.
func (r *Runner) Info(ctx context.Context, paths []string, verbose bool) []Result {
	return r.run(ctx, r.expand(paths), func(_ context.Context, path string) Result {
		m, res := r.open(path)
		if res != nil {
			return *res
		}
		date, hasDate := m.Date()
		rep := &Report{
			Path:        m.Path(),
			Format:      m.Format(),
			Size:        m.Size(),
			Width:       m.Width(),
			Height:      m.Height(),
			Date:        date,
			HasDate:     hasDate,
			Description: m.Description(),
			Orientation: m.OrientationName(),
			Camera:      m.Camera(),
		}
		if verbose {
			rep.Fields = m.Fields()
		}
		return Result{Status: StatusUnchanged, Report: rep}
	})
}
