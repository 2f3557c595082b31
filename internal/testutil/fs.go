package testutil

import (
	"errors"
	"os"
	"syscall"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// ReadOnlyFS rejects every call that would create or change a file.
type ReadOnlyFS struct {
	fs.Filesystem
}

// NewReadOnlyFS wraps an empty in-memory filesystem.
func NewReadOnlyFS() *ReadOnlyFS {
	return &ReadOnlyFS{Filesystem: billy.NewInMemoryFS()}
}

func (ReadOnlyFS) Create(name string) (fs.File, error) {
	return nil, &os.PathError{Op: "create", Path: name, Err: os.ErrPermission}
}

func (r ReadOnlyFS) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return r.Filesystem.OpenFile(name, flag, perm)
}

func (ReadOnlyFS) MkdirAll(path string, _ os.FileMode) error {
	return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrPermission}
}

func (ReadOnlyFS) WriteFile(name string, _ []byte, _ os.FileMode) error {
	return &os.PathError{Op: "write", Path: name, Err: os.ErrPermission}
}

// NoRemoveFS refuses to delete anything.
// Files can still be created, written and read.
type NoRemoveFS struct {
	fs.Filesystem
}

// NewNoRemoveFS wraps an in-memory filesystem whose Remove always fails.
func NewNoRemoveFS() *NoRemoveFS {
	return &NoRemoveFS{Filesystem: billy.NewInMemoryFS()}
}

func (NoRemoveFS) Remove(name string) error {
	return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
}

// FullFS hands out files whose writes fail as if the disk were full.
type FullFS struct {
	fs.Filesystem
}

// NewFullFS wraps base, or an in-memory filesystem when base is nil.
func NewFullFS(base fs.Filesystem) *FullFS {
	if base == nil {
		base = billy.NewInMemoryFS()
	}
	return &FullFS{Filesystem: base}
}

func (f FullFS) Create(name string) (fs.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (f FullFS) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	file, err := f.Filesystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return fullFile{file}, nil
}

type fullFile struct {
	fs.File
}

func (fullFile) Write([]byte) (int, error) {
	return 0, syscall.ENOSPC
}

// DirNames lists the entries of dir. A missing dir has no entries.
func DirNames(fsys fs.Filesystem, dir string) ([]string, error) {
	if _, err := fsys.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	infos, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}
