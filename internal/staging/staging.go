// Package staging buffers streams of unknown length into temporary files so
// they can be sent as requests with a known Content-Length.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// filePrefix starts the name of every staged file.
const filePrefix = "objectstore-stage-"

// Stager creates temporary files on a filesystem.
type Stager struct {
	fs  fs.Filesystem
	dir string
}

// New returns a Stager creating files in dir on filesystem.
// An empty dir selects os.TempDir.
func New(filesystem fs.Filesystem, dir string) *Stager {
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{fs: filesystem, dir: dir}
}

// Staged is a temp file holding a fully buffered stream, rewound to its start.
type Staged struct {
	fs.File
	name string
	size int64
	fs   fs.Filesystem
}

// Size returns the number of buffered bytes.
func (s *Staged) Size() int64 {
	return s.size
}

// Release closes and removes the temp file. It is safe to call more than once.
func (s *Staged) Release() error {
	if s == nil || s.File == nil {
		return nil
	}
	name := s.name
	_ = s.File.Close()
	s.File = nil
	if err := s.fs.Remove(name); err != nil {
		return errors.Mark(errors.ErrLocalResource, fmt.Errorf("remove temp file %s: %w", name, err))
	}
	return nil
}

// Stage copies r into a new temp file. The caller must call Release on the
// result, typically with defer, whether or not the later upload succeeds.
func (s *Stager) Stage(r io.Reader) (*Staged, error) {
	f, err := s.Create()
	if err != nil {
		return nil, err
	}
	staged := &Staged{File: f, name: f.Name(), fs: s.fs}

	n, err := io.Copy(localWriter{f}, r)
	if err != nil {
		return nil, Join(fmt.Errorf("stage stream: %w", err), staged.Release())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		err = errors.Mark(errors.ErrLocalResource, fmt.Errorf("rewind temp file: %w", err))
		return nil, Join(err, staged.Release())
	}
	staged.size = n
	return staged, nil
}

// Create opens a new, uniquely named temp file for reading and writing.
// The file is created exclusively; an existing name is never reused.
func (s *Stager) Create() (fs.File, error) {
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return nil, errors.Mark(errors.ErrLocalResource, fmt.Errorf("create temp dir %s: %w", s.dir, err))
	}
	name := filepath.Join(s.dir, filePrefix+uuid.NewString())
	f, err := s.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, errors.Mark(errors.ErrLocalResource, fmt.Errorf("create temp file: %w", err))
	}
	return f, nil
}

// Remove deletes a file created by Create.
func (s *Stager) Remove(name string) error {
	if err := s.fs.Remove(name); err != nil {
		return errors.Mark(errors.ErrLocalResource, fmt.Errorf("remove temp file %s: %w", name, err))
	}
	return nil
}

// Dir returns the directory staged files are created in.
func (s *Stager) Dir() string {
	return s.dir
}

// Join folds a cleanup failure into err. Either may be nil; when both are
// set the result matches both through errors.Is.
func Join(err, cleanup error) error {
	switch {
	case cleanup == nil:
		return err
	case err == nil:
		return cleanup
	default:
		return multierror.Append(err, cleanup)
	}
}

// localWriter marks write failures on the temp file as local resource
// errors. Read failures of the source pass through unmarked.
type localWriter struct {
	w io.Writer
}

func (lw localWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if err != nil {
		return n, errors.Mark(errors.ErrLocalResource, fmt.Errorf("write temp file: %w", err))
	}
	return n, nil
}
