// FILE: tlog/storage.go
package tlog

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
)

// fileWriter appends to a file and rotates it by size and/or age
type fileWriter struct {
	path       string
	shadowPath string // Fixed backup name, replaces numbered backups when set
	curSize    int64
	maxSize    int64   // Bytes, 0 disables size rotation
	maxAge     float64 // Seconds, 0 disables age rotation
	startTime  float64 // Clock reading when the current file was opened
	maxBackups int
	file       *os.File
	info       os.FileInfo
	flags      int
	mode       os.FileMode
	flock      bool
	diag       bool // Internal diagnostics to stderr
}

// newFileWriter opens the target file and seeds the size from its stat
func newFileWriter(cfg *Config, now float64) (*fileWriter, error) {
	w := &fileWriter{
		path:       cfg.Path,
		shadowPath: cfg.ShadowPath,
		maxSize:    cfg.maxSizeBytes(),
		maxAge:     cfg.MaxAgeS,
		maxBackups: int(cfg.MaxBackups),
		flags:      int(cfg.OpenFlags),
		mode:       os.FileMode(cfg.FileMode),
		flock:      cfg.Flock,
		diag:       cfg.InternalErrorsToStderr,
	}
	if w.flags == 0 {
		w.flags = DefaultOpenFlags
	}
	if w.mode == 0 {
		w.mode = DefaultFileMode
	}
	if err := w.open(now, false); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fileWriter) kind() Kind { return KindFile }

// open (re)opens the active file and refreshes size and stat
func (w *fileWriter) open(now float64, truncate bool) error {
	flags := w.flags
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(w.path, flags, w.mode)
	if err != nil {
		return &IOError{Op: "open", Path: w.path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return &IOError{Op: "stat", Path: w.path, Err: err}
	}
	w.file = f
	w.info = fi
	w.curSize = fi.Size()
	w.startTime = now
	return nil
}

// closeFile releases the handle, the writer stays usable through a later open
func (w *fileWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return &IOError{Op: "close", Path: w.path, Err: err}
	}
	return nil
}

// sizeExceeded reports whether appending pending bytes would cross maxSize
func (w *fileWriter) sizeExceeded(pending int64) bool {
	return w.maxSize > 0 && w.curSize > 0 && w.curSize+pending > w.maxSize
}

// ageExceeded reports whether the active file outlived maxAge
func (w *fileWriter) ageExceeded(now float64) bool {
	return w.maxAge > 0 && w.curSize > 0 && now-w.startTime >= w.maxAge
}

// write appends the buffer, rotating first when it would overflow the active file
// or afterwards when the file reached its limit. A single call rotates at most once.
func (w *fileWriter) write(c *Context) error {
	if c.buf.Len() == 0 {
		return nil
	}
	now := c.clock()
	var err error

	if w.file == nil {
		// a previous reopen failed, retry before giving up on this batch
		if err = w.open(now, false); err != nil {
			c.buf.Reset()
			return err
		}
	}

	if w.flock {
		if lerr := lockFile(w.file); lerr != nil {
			internalLog(w.diag, "failed to lock '%s': %v\n", w.path, lerr)
		} else {
			defer func() {
				if w.file != nil {
					_ = unlockFile(w.file)
				}
			}()
			w.followRotation(now)
		}
	}

	rotated := false
	if w.sizeExceeded(int64(c.buf.Len())) || w.ageExceeded(now) {
		rotated = true
		err = combineErrors(err, w.rotate(c, now))
		if w.file == nil {
			c.buf.Reset()
			return err
		}
	}

	n, werr := w.file.Write(c.buf.Bytes())
	c.buf.Reset()
	w.curSize += int64(n)
	c.stats.BytesWritten.Add(uint64(n))
	c.stats.Flushes.Add(1)
	if werr != nil {
		return combineErrors(err, &IOError{Op: "write", Path: w.path, Err: werr})
	}

	if !rotated && w.maxSize > 0 && w.curSize >= w.maxSize {
		err = combineErrors(err, w.rotate(c, now))
	}
	return err
}

// followRotation reopens the path when another process rotated it away under us
func (w *fileWriter) followRotation(now float64) {
	fi, err := os.Stat(w.path)
	if err == nil && os.SameFile(fi, w.info) {
		w.curSize = fi.Size()
		return
	}
	old := w.file
	if oerr := w.open(now, false); oerr != nil {
		internalLog(w.diag, "failed to follow rotated file '%s': %v\n", w.path, oerr)
		return
	}
	_ = unlockFile(old)
	_ = old.Close()
	if lerr := lockFile(w.file); lerr != nil {
		internalLog(w.diag, "failed to lock '%s': %v\n", w.path, lerr)
	}
}

// rotate closes the active file, shifts backups, and opens a fresh file.
// Rename failures are collected and never prevent the reopen.
func (w *fileWriter) rotate(c *Context, now float64) error {
	var err error
	truncate := false

	if w.flock && w.file != nil {
		_ = unlockFile(w.file)
	}
	if cerr := w.closeFile(); cerr != nil {
		err = combineErrors(err, cerr)
	}

	switch {
	case w.shadowPath != "":
		if rerr := os.Rename(w.path, w.shadowPath); rerr != nil {
			err = combineErrors(err, &IOError{Op: "rename", Path: w.path, Err: rerr})
		}
	case w.maxBackups > 0:
		err = combineErrors(err, w.shiftBackups())
		if rerr := os.Rename(w.path, w.backupName(1)); rerr != nil {
			err = combineErrors(err, &IOError{Op: "rename", Path: w.path, Err: rerr})
		}
	default:
		// nowhere to keep the old content
		truncate = true
	}

	if oerr := w.open(now, truncate); oerr != nil {
		err = combineErrors(err, oerr)
		internalLog(w.diag, "failed to reopen '%s' after rotation: %v\n", w.path, oerr)
	} else {
		if w.flock {
			if lerr := lockFile(w.file); lerr != nil {
				internalLog(w.diag, "failed to lock '%s': %v\n", w.path, lerr)
			}
		}
		c.stats.Rotations.Add(1)
	}
	if err != nil {
		internalLog(w.diag, "rotation of '%s' incomplete: %v\n", w.path, err)
	}
	return err
}

// shiftBackups evicts the oldest backup and moves path.N to path.N+1
func (w *fileWriter) shiftBackups() error {
	var err error
	if rerr := os.Remove(w.backupName(w.maxBackups)); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
		err = combineErrors(err, &IOError{Op: "remove", Path: w.backupName(w.maxBackups), Err: rerr})
	}
	for n := w.maxBackups - 1; n >= 1; n-- {
		src := w.backupName(n)
		if rerr := os.Rename(src, w.backupName(n+1)); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			err = combineErrors(err, &IOError{Op: "rename", Path: src, Err: rerr})
		}
	}
	return err
}

// backupName returns path.n
func (w *fileWriter) backupName(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// close writes what is left in the buffer without rotating and releases the file
func (w *fileWriter) close(c *Context) error {
	var err error
	if c.buf.Len() > 0 && w.file != nil {
		if w.flock {
			// released by closeFile below
			_ = lockFile(w.file)
		}
		n, werr := w.file.Write(c.buf.Bytes())
		w.curSize += int64(n)
		c.stats.BytesWritten.Add(uint64(n))
		c.stats.Flushes.Add(1)
		if werr != nil {
			err = &IOError{Op: "write", Path: w.path, Err: werr}
		}
	}
	c.buf.Reset()
	if w.file != nil {
		if serr := w.file.Sync(); serr != nil {
			internalLog(w.diag, "failed to sync '%s' on close: %v\n", w.path, serr)
		}
	}
	return combineErrors(err, w.closeFile())
}
