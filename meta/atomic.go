//go:build !windows

package meta

import (
	"fmt"
	"io/fs"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces path with data through a synced temporary file
// in the same directory. A failed write leaves path untouched.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	if err := renameio.WriteFile(path, data, perm, renameio.WithPermissions(perm)); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
