package file

import (
	"os"

	"github.com/spf13/afero"
)

// Exists reports whether path names a regular file (directories do not count).
func Exists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}
