package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem the file-backed release cache writes to.
type FileSystemRepository interface {
	afero.Fs
}
